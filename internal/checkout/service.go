package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/catalog"
	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/coupon"
	"github.com/noah-isme/matita-boutique/internal/handoff"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
	"github.com/noah-isme/matita-boutique/internal/obs"
	"github.com/noah-isme/matita-boutique/internal/pricing"
	"github.com/noah-isme/matita-boutique/internal/sales"
)

// MaxQuantity bounds a single line of a checkout.
const MaxQuantity = 99

// ProductLookup resolves current catalog prices.
type ProductLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// CouponResolver validates coupon codes against the stored catalog.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, subtotal pricing.Money) (pricing.Coupon, error)
}

// MemberLookup loads the loyalty profile of an authenticated member.
type MemberLookup interface {
	Member(ctx context.Context, userID string) (loyalty.Member, error)
}

// SaleEnqueuer hands a sale to the background recorder.
type SaleEnqueuer interface {
	Enqueue(ctx context.Context, p sales.RecordPayload) error
}

// CartClearer empties a member's persisted cart once the order is handed off.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// ServiceConfig wires the checkout collaborators. Members, Sales and Carts are optional.
type ServiceConfig struct {
	Products ProductLookup
	Coupons  CouponResolver
	Members  MemberLookup
	Sales    SaleEnqueuer
	Carts    CartClearer
	Handoff  handoff.Builder
	Template pricing.Template
	Now      func() time.Time
}

// Service prices sessions and submits orders.
type Service struct {
	cfg ServiceConfig
}

// NewService constructs a checkout service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Template == (pricing.Template{}) {
		cfg.Template = pricing.DefaultTemplate
	}
	return &Service{cfg: cfg}
}

// Quote is a priced session. Notice explains adjustments the server made, such as a coupon
// that no longer applies to the current subtotal.
type Quote struct {
	Session     Session             `json:"session"`
	Computation pricing.Computation `json:"computation"`
	Notice      string              `json:"notice,omitempty"`
}

// Receipt is the result of a submitted checkout.
type Receipt struct {
	Computation pricing.Computation `json:"computation"`
	Summary     string              `json:"summary"`
	HandoffURL  string              `json:"handoffUrl"`
	SaleID      string              `json:"saleId"`
}

type prepared struct {
	quote     Quote
	items     []pricing.LineItem
	sel       pricing.Selections
	recipient string
}

// Quote reprices the session at current catalog prices and computes the order.
func (s *Service) Quote(ctx context.Context, userID string, sess Session) (Quote, error) {
	p, err := s.prepare(ctx, userID, sess)
	if err != nil {
		return Quote{}, err
	}
	return p.quote, nil
}

// ApplyCoupon resolves code against the session subtotal and returns the session with the
// coupon replacing any previous one. On failure the session is returned untouched together
// with the validation error, so a previously applied coupon stays in effect.
func (s *Service) ApplyCoupon(ctx context.Context, userID string, sess Session, code string) (Session, error) {
	if s == nil || s.cfg.Coupons == nil {
		return sess, errors.New("checkout service not configured")
	}
	items, err := s.reprice(ctx, sess.Items)
	if err != nil {
		return sess, err
	}
	c, err := s.cfg.Coupons.Resolve(ctx, code, pricing.ComputeSubtotal(items))
	if err != nil {
		return sess, coupon.AsAppError(err)
	}
	return sess.WithCoupon(c), nil
}

// Submit finalises the order: it renders the summary, builds the handoff link and queues the
// sales record. Queueing failures are logged and never block the handoff.
func (s *Service) Submit(ctx context.Context, userID string, sess Session) (Receipt, error) {
	method := sess.Selections().PaymentMethod
	if len(sess.Items) == 0 {
		obs.IncCheckout(method, "rejected")
		return Receipt{}, common.NewAppError("EMPTY_CART", "the cart is empty", http.StatusUnprocessableEntity, nil)
	}
	pm, ok := pricing.LookupPaymentMethod(method)
	if !ok {
		obs.IncCheckout("unknown", "rejected")
		return Receipt{}, common.NewAppError("VALIDATION_ERROR", "unknown payment method", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]string{"paymentMethod": "oneof"})
	}
	sess.PaymentMethod = pm.ID

	p, err := s.prepare(ctx, userID, sess)
	if err != nil {
		obs.IncCheckout(pm.ID, "rejected")
		return Receipt{}, err
	}
	if len(p.items) == 0 {
		obs.IncCheckout(pm.ID, "rejected")
		return Receipt{}, common.NewAppError("EMPTY_CART", "the cart is empty", http.StatusUnprocessableEntity, nil)
	}
	comp := p.quote.Computation

	summary := s.cfg.Template.Render(p.items, p.sel, comp, p.recipient)
	link, err := s.cfg.Handoff.Link(summary)
	if err != nil {
		obs.IncCheckout(pm.ID, "error")
		return Receipt{}, err
	}

	log := zerolog.Ctx(ctx)
	sale := sales.BuildSale(userID, p.items, p.sel, comp, s.cfg.Now())
	if s.cfg.Sales != nil {
		payload := sales.RecordPayload{Sale: sale, PointsToDeduct: comp.PointsRedeemedCount}
		if err := s.cfg.Sales.Enqueue(ctx, payload); err != nil {
			log.Error().Err(err).Str("sale_id", sale.ID).Msg("enqueue sale record")
		}
	}
	if userID != "" && s.cfg.Carts != nil {
		if err := s.cfg.Carts.Clear(ctx, userID); err != nil {
			log.Warn().Err(err).Msg("clear cart after checkout")
		}
	}

	obs.IncCheckout(pm.ID, "submitted")
	obs.AddPointsRedeemed(comp.PointsRedeemedCount)
	log.Info().
		Str("sale_id", sale.ID).
		Str("payment_method", pm.ID).
		Str("total", comp.Total.StringFixed(2)).
		Int64("points_redeemed", comp.PointsRedeemedCount).
		Str("coupon", comp.CouponCode).
		Msg("checkout_submitted")

	return Receipt{Computation: comp, Summary: summary, HandoffURL: link, SaleID: sale.ID}, nil
}

func (s *Service) prepare(ctx context.Context, userID string, sess Session) (prepared, error) {
	if s == nil || s.cfg.Products == nil || s.cfg.Coupons == nil {
		return prepared{}, errors.New("checkout service not configured")
	}
	items, err := s.reprice(ctx, sess.Items)
	if err != nil {
		return prepared{}, err
	}
	sess.Items = items
	subtotal := pricing.ComputeSubtotal(items)

	var notice string
	if sess.AppliedCoupon != nil {
		c, err := s.cfg.Coupons.Resolve(ctx, sess.AppliedCoupon.Code, subtotal)
		switch {
		case err == nil:
			sess.AppliedCoupon = &c
		case errors.Is(err, pricing.ErrCouponIneligible), errors.Is(err, pricing.ErrCouponNotFound):
			notice = "coupon " + pricing.NormalizeCode(sess.AppliedCoupon.Code) + " no longer applies: " + err.Error()
			sess.AppliedCoupon = nil
		default:
			return prepared{}, err
		}
	}

	var (
		account   *pricing.LoyaltyAccount
		recipient = strings.TrimSpace(sess.Recipient)
	)
	if userID != "" && s.cfg.Members != nil {
		m, err := s.cfg.Members.Member(ctx, userID)
		if err != nil {
			return prepared{}, err
		}
		account = &pricing.LoyaltyAccount{PointsBalance: m.Points}
		recipient = m.DisplayName()
	}

	sel := sess.Selections()
	if len([]rune(sel.GiftNote)) > MaxGiftNote {
		sel.GiftNote = string([]rune(sel.GiftNote)[:MaxGiftNote])
	}
	return prepared{
		quote: Quote{
			Session:     sess,
			Computation: pricing.Compute(items, sel, account),
			Notice:      notice,
		},
		items:     items,
		sel:       sel,
		recipient: recipient,
	}, nil
}

// reprice replaces client supplied names and prices with the catalog's. Lines with a
// non-positive quantity are dropped.
func (s *Service) reprice(ctx context.Context, lines []pricing.LineItem) ([]pricing.LineItem, error) {
	ids := make([]string, 0, len(lines))
	for _, it := range lines {
		if it.Quantity > MaxQuantity {
			return nil, common.NewAppError("VALIDATION_ERROR", "quantity exceeds the per item limit", http.StatusUnprocessableEntity, nil).
				WithDetails(map[string]any{"productId": it.ID, "max": MaxQuantity})
		}
		if it.Quantity > 0 {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return []pricing.LineItem{}, nil
	}
	products, err := s.cfg.Products.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]pricing.LineItem, 0, len(ids))
	var missing []string
	for _, it := range lines {
		if it.Quantity <= 0 {
			continue
		}
		p, ok := products[it.ID]
		if !ok {
			missing = append(missing, it.ID)
			continue
		}
		out = append(out, pricing.LineItem{ID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: it.Quantity})
	}
	if len(missing) > 0 {
		return nil, common.NewAppError("PRODUCT_UNAVAILABLE", "some products are no longer available", http.StatusConflict, nil).
			WithDetails(map[string]any{"productIds": missing})
	}
	return out, nil
}
