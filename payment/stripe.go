package payment

import (
	"context"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/coupon"
)

// LineItem is one purchasable line of a hosted payment session. UnitAmount
// is in minor currency units (paise).
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes a hosted checkout session to create. Metadata
// is carried opaquely by the provider and returned on retrieval; it must
// be sufficient to reconstruct the order without re-reading the catalog.
type SessionRequest struct {
	LineItems          []LineItem
	DiscountPercentage float64
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// Session is the provider's view of a checkout session. AmountTotal is the
// realized charge in minor units.
type Session struct {
	ID          string
	Paid        bool
	AmountTotal int64
	Metadata    map[string]string
}

// Provider is the payment collaborator consumed by the checkout flow.
type Provider interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}

type stripeProvider struct{}

// NewStripeProvider configures the Stripe SDK with the secret key and
// returns a Provider backed by hosted Checkout Sessions.
func NewStripeProvider(secretKey string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{}
}

func (p *stripeProvider) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(string(stripe.CurrencyINR)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(item.Name),
			},
			UnitAmount: stripe.Int64(item.UnitAmount),
		}
		if item.Image != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{item.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.DiscountPercentage > 0 {
		couponID, err := p.createPercentOffCoupon(ctx, req.DiscountPercentage)
		if err != nil {
			return nil, err
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(couponID)},
		}
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return fromStripeSession(s), nil
}

func (p *stripeProvider) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(s), nil
}

// createPercentOffCoupon creates a single-use percent-off discount object
// applied at session-creation time.
func (p *stripeProvider) createPercentOffCoupon(ctx context.Context, percentOff float64) (string, error) {
	params := &stripe.CouponParams{
		PercentOff: stripe.Float64(percentOff),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.Context = ctx

	c, err := coupon.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:          s.ID,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: s.AmountTotal,
		Metadata:    s.Metadata,
	}
}
