package venues

type CreateVenueRequest struct {
	Name             string `json:"name" binding:"required,min=1,max=255"`
	Address          string `json:"address"`
	ContactEmail     string `json:"contact_email" binding:"omitempty,email"`
	RequiresApproval bool   `json:"requires_approval"`
	DepositAmount    int64  `json:"deposit_amount" binding:"gte=0"`
}

type UpdateVenueRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address          *string `json:"address"`
	ContactEmail     *string `json:"contact_email" binding:"omitempty,email"`
	RequiresApproval *bool   `json:"requires_approval"`
	DepositAmount    *int64  `json:"deposit_amount" binding:"omitempty,gte=0"`
}
