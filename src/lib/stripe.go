package lib

import (
	"context"
	"os"
	"terena/src/booking"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

// NewStripeClient replaces the client instance with a custom implementation
func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripeGateway implements booking.PaymentGateway on top of the Stripe API.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, description string) (*booking.PaymentIntent, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		return nil, err
	}
	return &booking.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, chargeID string, amountMinor *int64) (*booking.RefundResult, error) {
	sc := GetStripeClient()
	params := stripe.RefundCreateParams{
		Charge: stripe.String(chargeID),
	}
	if amountMinor != nil {
		params.Amount = stripe.Int64(*amountMinor)
	}
	refund, err := sc.V1Refunds.Create(ctx, &params)
	if err != nil {
		return nil, err
	}
	return &booking.RefundResult{ID: refund.ID}, nil
}
