package payments

import (
	"context"
	"errors"
	"fmt"

	"venuebook/internal/shared/config"
	"venuebook/pkg/logger"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// Escrow moves money held for a reservation. Amounts are in minor units and
// the reference is the payment intent created when the guest paid.
type Escrow interface {
	Capture(ctx context.Context, reference string, amount int64, idempotencyKey string) error
	Refund(ctx context.Context, reference string, amount int64, idempotencyKey string) error
	Name() string
}

// StripeEscrow captures and refunds Stripe payment intents
type StripeEscrow struct {
	currency string
}

func NewStripeEscrow(cfg config.StripeConfig) (*StripeEscrow, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	stripe.Key = cfg.SecretKey
	return &StripeEscrow{currency: cfg.Currency}, nil
}

func (e *StripeEscrow) Capture(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(amount),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.Capture(reference, params)
	if err != nil {
		return fmt.Errorf("failed to capture payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s not captured: status %s", reference, pi.Status)
	}
	return nil
}

func (e *StripeEscrow) Refund(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(reference),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func (e *StripeEscrow) Name() string {
	return "stripe"
}

// LoggingEscrow records escrow calls without moving money. Used in
// development and when no gateway key is configured.
type LoggingEscrow struct {
	log *logger.Logger
}

func NewLoggingEscrow(log *logger.Logger) *LoggingEscrow {
	return &LoggingEscrow{log: log}
}

func (e *LoggingEscrow) Capture(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	e.log.InfoWithContext(ctx, "escrow capture", map[string]interface{}{
		"reference":       reference,
		"amount":          amount,
		"idempotency_key": idempotencyKey,
	})
	return nil
}

func (e *LoggingEscrow) Refund(ctx context.Context, reference string, amount int64, idempotencyKey string) error {
	e.log.InfoWithContext(ctx, "escrow refund", map[string]interface{}{
		"reference":       reference,
		"amount":          amount,
		"idempotency_key": idempotencyKey,
	})
	return nil
}

func (e *LoggingEscrow) Name() string {
	return "log"
}
