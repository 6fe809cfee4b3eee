// Package billing answers exactly one question by asking Stripe: does this
// email have an active subscription. Subscription lifecycle, checkout, and
// webhooks all live in the hosted billing product, not here.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/promptvault/server/internal/logging"
)

// Service checks subscription status against Stripe
type Service struct {
	api    *client.API
	logger *logging.Logger
}

// NewService creates a billing service with the given Stripe secret key
func NewService(secretKey string, logger *logging.Logger) *Service {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Service{
		api:    api,
		logger: logger,
	}
}

// CheckSubscription reports whether the email belongs to a Stripe customer
// with at least one active subscription. Any lookup failure is logged and
// reported as false; membership checks fail closed.
func (s *Service) CheckSubscription(ctx context.Context, email string) bool {
	customerParams := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	customerParams.Context = ctx
	customerParams.Limit = stripe.Int64(1)

	customers := s.api.Customers.List(customerParams)
	if !customers.Next() {
		if err := customers.Err(); err != nil {
			s.logger.Warn("Stripe customer lookup failed", logging.WithField("error", err.Error()))
		}
		return false
	}
	customer := customers.Customer()

	subParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(customer.ID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	subParams.Context = ctx
	subParams.Limit = stripe.Int64(1)

	subs := s.api.Subscriptions.List(subParams)
	if subs.Next() {
		return true
	}
	if err := subs.Err(); err != nil {
		s.logger.Warn("Stripe subscription lookup failed", logging.WithField("error", err.Error()))
	}
	return false
}
