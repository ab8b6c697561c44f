// Package payment wraps Stripe payment-intent creation. Amounts travel
// through the API in euros and are converted to cents at this boundary.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// ErrNotConfigured is returned when no Stripe secret key is set. Callers
// answer 503, the storefront hides the payment form.
var ErrNotConfigured = errors.New("payment not configured")

// GatewayError wraps a Stripe call failure. The wrapped detail is for
// logs only; clients get a generic message.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

type Client struct {
	secretKey string
}

func NewClient(secretKey string) *Client {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Client{secretKey: secretKey}
}

func (c *Client) Configured() bool {
	return c.secretKey != ""
}

// ToMinorUnits converts a euro amount to cents, rounding to the nearest
// cent.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent creates a payment intent for the given euro amount and
// returns its client secret. No retries; a failed intent means the
// client restarts checkout.
func (c *Client) CreateIntent(ctx context.Context, amount float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToMinorUnits(amount)),
		Currency:           stripe.String(string(stripe.CurrencyEUR)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "paypal"}),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", &GatewayError{Err: err}
	}

	return pi.ClientSecret, nil
}
