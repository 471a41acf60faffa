package reservations

type DeclineRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdatePaymentRequest is posted by the payment webhook relay or venue staff
type UpdatePaymentRequest struct {
	PaymentStatus    PaymentStatus `json:"payment_status" binding:"required"`
	PaymentReference *string       `json:"payment_reference"`
}
