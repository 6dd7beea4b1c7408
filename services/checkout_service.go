package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/payment"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

const (
	// giftCouponThreshold is the post-discount session total, in minor
	// units, at or above which a new gift coupon is issued.
	giftCouponThreshold = 20000
	giftCouponPercent   = 10
	giftCouponValidity  = 30 * 24 * time.Hour
)

// CheckoutProduct is the client's snapshot of one cart line at checkout
// time. The price here is what gets charged; the catalog is not re-read.
type CheckoutProduct struct {
	ID       string  `json:"_id" binding:"required"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CreateCheckoutSessionRequest struct {
	Products   []CheckoutProduct `json:"products"`
	CouponCode string            `json:"couponCode"`
}

type CreateCheckoutSessionResponse struct {
	ID          string  `json:"id"`
	TotalAmount float64 `json:"totalAmount"`
}

type CheckoutSuccessRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type CheckoutSuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

// orderSnapshot is the line-item form embedded in session metadata.
type orderSnapshot struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CheckoutService drives a checkout attempt through its states: cart
// validated, payment session created, then order finalized once the
// provider reports the session paid.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, user *models.User, req *CreateCheckoutSessionRequest) (*CreateCheckoutSessionResponse, *ServiceError)
	CheckoutSuccess(ctx context.Context, sessionID string) (*CheckoutSuccessResponse, *ServiceError)
}

type checkoutService struct {
	coupons   repository.CouponRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	cache     cache.Cache
	provider  payment.Provider
	clientURL string
	logger    *zap.Logger
}

func NewCheckoutService(
	coupons repository.CouponRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	c cache.Cache,
	provider payment.Provider,
	clientURL string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		coupons:   coupons,
		orders:    orders,
		users:     users,
		cache:     c,
		provider:  provider,
		clientURL: clientURL,
		logger:    logger,
	}
}

func (s *checkoutService) CreateCheckoutSession(ctx context.Context, user *models.User, req *CreateCheckoutSessionRequest) (*CreateCheckoutSessionResponse, *ServiceError) {
	if len(req.Products) == 0 {
		return nil, badRequest("Invalid or empty products array")
	}

	// Totals are computed in integer paise to avoid floating rounding
	// drift across lines.
	var totalAmount int64
	lineItems := make([]payment.LineItem, 0, len(req.Products))
	snapshots := make([]orderSnapshot, 0, len(req.Products))

	for _, product := range req.Products {
		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}

		unitAmount := int64(math.Round(product.Price * 100))
		totalAmount += unitAmount * int64(quantity)

		lineItems = append(lineItems, payment.LineItem{
			Name:       product.Name,
			Image:      product.Image,
			UnitAmount: unitAmount,
			Quantity:   int64(quantity),
		})
		snapshots = append(snapshots, orderSnapshot{
			ID:       product.ID,
			Quantity: quantity,
			Price:    product.Price,
		})
	}

	// An invalid or inactive coupon is silently ignored rather than
	// failing the checkout.
	var coupon *models.Coupon
	if req.CouponCode != "" {
		found, err := s.coupons.FindActiveByCodeAndUser(ctx, req.CouponCode, user.ID)
		if err != nil {
			s.logger.Error("failed to look up checkout coupon",
				zap.String("user_id", user.ID.Hex()), zap.String("code", req.CouponCode), zap.Error(err))
			return nil, serverError("Error processing checkout")
		}
		if found != nil {
			discount := int64(math.Round(float64(totalAmount) * found.DiscountPercentage / 100))
			totalAmount -= discount
			coupon = found
			s.logger.Info("coupon applied to checkout",
				zap.String("user_id", user.ID.Hex()),
				zap.String("code", found.Code),
				zap.Int64("discount", discount),
			)
		} else {
			s.logger.Warn("checkout coupon not found or inactive",
				zap.String("user_id", user.ID.Hex()), zap.String("code", req.CouponCode))
		}
	}

	productsJSON, err := json.Marshal(snapshots)
	if err != nil {
		s.logger.Error("failed to marshal order snapshot", zap.Error(err))
		return nil, serverError("Error processing checkout")
	}

	sessionReq := &payment.SessionRequest{
		LineItems:  lineItems,
		SuccessURL: fmt.Sprintf("%s/purchase-success?session_id={CHECKOUT_SESSION_ID}", s.clientURL),
		CancelURL:  fmt.Sprintf("%s/purchase-cancel", s.clientURL),
		Metadata: map[string]string{
			"userId":     user.ID.Hex(),
			"couponCode": req.CouponCode,
			"products":   string(productsJSON),
		},
	}
	if coupon != nil {
		sessionReq.DiscountPercentage = coupon.DiscountPercentage
	}

	session, err := s.provider.CreateSession(ctx, sessionReq)
	if err != nil {
		s.logger.Error("failed to create payment session",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return nil, serverError("Error processing checkout")
	}

	s.logger.Info("checkout session created",
		zap.String("user_id", user.ID.Hex()),
		zap.String("session_id", session.ID),
		zap.Int64("total_amount", totalAmount),
	)

	// Gift coupon issuance happens at session creation regardless of
	// whether the payment completes.
	if totalAmount >= giftCouponThreshold {
		if err := s.issueGiftCoupon(ctx, user.ID); err != nil {
			s.logger.Error("failed to issue gift coupon",
				zap.String("user_id", user.ID.Hex()), zap.Error(err))
			return nil, serverError("Error processing checkout")
		}
	}

	return &CreateCheckoutSessionResponse{
		ID:          session.ID,
		TotalAmount: float64(totalAmount) / 100,
	}, nil
}

func (s *checkoutService) CheckoutSuccess(ctx context.Context, sessionID string) (*CheckoutSuccessResponse, *ServiceError) {
	// Finalization is idempotent on the session id: a repeated
	// confirmation for an already-finalized session is a no-op success.
	if existing, err := s.orders.FindBySessionID(ctx, sessionID); err == nil && existing != nil {
		s.logger.Info("checkout already finalized",
			zap.String("session_id", sessionID), zap.String("order_id", existing.ID.Hex()))
		return &CheckoutSuccessResponse{
			Success: true,
			Message: "Order already processed.",
			OrderID: existing.ID.Hex(),
		}, nil
	}

	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to retrieve payment session",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, serverError("Error processing successful checkout")
	}

	if !session.Paid {
		s.logger.Warn("payment not confirmed, no order created",
			zap.String("session_id", sessionID))
		return &CheckoutSuccessResponse{Success: false, Message: "Payment not completed."}, nil
	}

	userID, svcErr := s.parseSessionUser(session)
	if svcErr != nil {
		return nil, svcErr
	}

	if code := session.Metadata["couponCode"]; code != "" {
		if err := s.coupons.DeactivateByCodeAndUser(ctx, code, userID); err != nil {
			s.logger.Error("failed to deactivate used coupon",
				zap.String("session_id", sessionID), zap.String("code", code), zap.Error(err))
			return nil, serverError("Error processing successful checkout")
		}
		s.cache.Delete(ctx,
			cache.KeyCouponByCode(code),
			cache.KeyUserCoupon(userID.Hex()),
		)
	}

	var snapshots []orderSnapshot
	if err := json.Unmarshal([]byte(session.Metadata["products"]), &snapshots); err != nil {
		s.logger.Error("failed to decode order snapshot from session metadata",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, serverError("Error processing successful checkout")
	}

	items := make([]models.OrderItem, 0, len(snapshots))
	for _, snapshot := range snapshots {
		productID, err := primitive.ObjectIDFromHex(snapshot.ID)
		if err != nil {
			s.logger.Error("invalid product id in order snapshot",
				zap.String("session_id", sessionID), zap.String("product_id", snapshot.ID))
			return nil, serverError("Error processing successful checkout")
		}
		items = append(items, models.OrderItem{
			Product:  productID,
			Quantity: snapshot.Quantity,
			Price:    snapshot.Price,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Products:        items,
		TotalAmount:     float64(session.AmountTotal) / 100,
		StripeSessionID: sessionID,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		// A concurrent confirmation may have won the insert race; the
		// unique session index makes that a duplicate key, which is
		// treated as the same no-op success.
		if mongo.IsDuplicateKeyError(err) {
			if existing, findErr := s.orders.FindBySessionID(ctx, sessionID); findErr == nil && existing != nil {
				return &CheckoutSuccessResponse{
					Success: true,
					Message: "Order already processed.",
					OrderID: existing.ID.Hex(),
				}, nil
			}
		}
		s.logger.Error("failed to create order",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, serverError("Error processing successful checkout")
	}

	if err := s.users.UpdateCart(ctx, userID, nil); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			zap.String("user_id", userID.Hex()), zap.Error(err))
	}

	s.cache.Delete(ctx, cache.KeyUserCart(userID.Hex()), cache.KeyAnalytics())
	s.cache.DeletePattern(ctx, cache.PatternDailySales)

	s.logger.Info("order created",
		zap.String("session_id", sessionID),
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total_amount", order.TotalAmount),
	)

	return &CheckoutSuccessResponse{
		Success: true,
		Message: "Payment successful, order created, and coupon deactivated if used.",
		OrderID: order.ID.Hex(),
	}, nil
}

func (s *checkoutService) parseSessionUser(session *payment.Session) (primitive.ObjectID, *ServiceError) {
	userID, err := primitive.ObjectIDFromHex(session.Metadata["userId"])
	if err != nil {
		s.logger.Error("invalid user id in session metadata",
			zap.String("session_id", session.ID), zap.Error(err))
		return primitive.NilObjectID, serverError("Error processing successful checkout")
	}
	return userID, nil
}

// issueGiftCoupon replaces any prior coupon for the user with a fresh
// single-use 10% gift coupon and warms both coupon cache keys.
func (s *checkoutService) issueGiftCoupon(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.coupons.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	coupon := &models.Coupon{
		Code:               giftCouponCode(),
		DiscountPercentage: giftCouponPercent,
		ExpirationDate:     time.Now().Add(giftCouponValidity),
		UserID:             userID,
		IsActive:           true,
	}
	if err := s.coupons.Insert(ctx, coupon); err != nil {
		return err
	}

	s.cache.Set(ctx, cache.KeyUserCoupon(userID.Hex()), coupon, cache.TTLCoupon)
	s.cache.Set(ctx, cache.KeyCouponByCode(coupon.Code), coupon, cache.TTLCoupon)

	s.logger.Info("gift coupon issued",
		zap.String("user_id", userID.Hex()),
		zap.String("code", coupon.Code),
	)
	return nil
}

func giftCouponCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "GIFT" + suffix[:6]
}
