package orders

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joao-fontenele/storefront/internal/discount"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/inventory"
	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/telemetry"
)

var tracer = otel.Tracer("orders/processor")

// Publisher delivers order events. A nil Publisher disables events.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Processor struct {
	writer    *store.Writer
	engine    *discount.Engine
	publisher Publisher
	metrics   *telemetry.CheckoutMetrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewProcessor(writer *store.Writer, engine *discount.Engine, publisher Publisher, metrics *telemetry.CheckoutMetrics, logger *slog.Logger) *Processor {
	return &Processor{
		writer:    writer,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Outcome is a placed order plus the discount code it earned, if any.
type Outcome struct {
	Order           domain.Order         `json:"order"`
	NewDiscountCode *domain.DiscountCode `json:"newDiscountCode,omitempty"`
}

// Checkout places an order for userID.
//
// A discount code minted because this order lands on the cadence is kept even
// when the checkout then fails on an item or on the supplied code. Stock,
// order history and code redemption are only written when every line and the
// supplied code check out.
func (p *Processor) Checkout(ctx context.Context, userID string, lines []domain.CartLine, discountCode string) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("cart.lines", len(lines)))

	outcome, user, err := p.checkout(ctx, userID, lines, discountCode)
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = "internal_error"
		}
		p.metrics.Checkout(ctx, string(kind))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("checkout failed", "error", err, "kind", kind, "user_id", userID)
		return nil, err
	}

	p.metrics.Checkout(ctx, "placed")
	p.metrics.OrderAmount(ctx, outcome.Order.FinalAmount.InexactFloat64())
	if outcome.Order.AppliedDiscountCode != "" {
		p.metrics.CodeRedeemed(ctx)
	}
	span.SetAttributes(attribute.String("order.id", outcome.Order.OrderID))

	p.publish(ctx, user, outcome)

	p.logger.Info("order placed",
		"order_id", outcome.Order.OrderID,
		"user_id", userID,
		"final_amount", outcome.Order.FinalAmount.String(),
		"new_discount_code", outcome.NewDiscountCode != nil,
	)
	return outcome, nil
}

func (p *Processor) checkout(ctx context.Context, userID string, lines []domain.CartLine, code string) (*Outcome, domain.User, error) {
	if err := validateCart(userID, lines); err != nil {
		return nil, domain.User{}, err
	}

	p.writer.Lock()
	defer p.writer.Unlock()

	snap, err := p.load(ctx)
	if err != nil {
		return nil, domain.User{}, err
	}

	userIdx, ok := snap.FindUser(userID)
	if !ok {
		return nil, domain.User{}, &Error{Kind: KindUserNotFound}
	}

	minted, err := p.engine.MaybeIssue(snap.TotalOrders(), snap.DiscountOrder, snap.DiscountCodes)
	if err != nil {
		return nil, domain.User{}, err
	}
	if minted != nil {
		snap.DiscountCodes = append(snap.DiscountCodes, *minted)
		p.metrics.CodeIssued(ctx, "cadence")
	}

	items, total, touched, err := priceLines(snap, lines)
	if err != nil {
		p.keepMintedCode(ctx, snap, minted)
		return nil, domain.User{}, err
	}

	discountApplied := decimal.Zero
	redeemed := -1
	if code != "" {
		discountApplied, redeemed, err = discount.Redeem(code, snap.DiscountCodes, total)
		if err != nil {
			p.keepMintedCode(ctx, snap, minted)
			return nil, domain.User{}, &Error{Kind: KindInvalidDiscountCode, Err: err}
		}
	}

	order := domain.Order{
		OrderID:             uuid.New().String(),
		Items:               items,
		TotalAmount:         total,
		DiscountApplied:     discountApplied,
		FinalAmount:         total.Sub(discountApplied),
		Date:                p.now(),
		AppliedDiscountCode: code,
	}

	if redeemed >= 0 {
		snap.DiscountCodes[redeemed].IsAvailable = false
	}
	snap.Users[userIdx].Orders = append(snap.Users[userIdx].Orders, order)
	inventory.ReplaceProducts(snap, touched)

	if err := p.commit(ctx, snap); err != nil {
		return nil, domain.User{}, err
	}

	return &Outcome{Order: order, NewDiscountCode: minted}, snap.Users[userIdx], nil
}

// priceLines resolves every line against working copies of the products, so
// a failing line leaves snap untouched. Lines naming the same product draw on
// the same working copy.
func priceLines(snap *domain.Snapshot, lines []domain.CartLine) ([]domain.OrderItem, decimal.Decimal, []domain.Product, error) {
	working := make(map[string]*domain.Product, len(lines))
	var order []string

	items := make([]domain.OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		product, seen := working[line.ProductID]
		if !seen {
			product = inventory.FindProduct(snap, line.ProductID)
			if product == nil {
				return nil, decimal.Zero, nil, &Error{Kind: KindProductNotFound, ProductID: line.ProductID}
			}
			working[line.ProductID] = product
			order = append(order, line.ProductID)
		}

		if product.Quantity < line.Quantity {
			return nil, decimal.Zero, nil, &Error{
				Kind:        KindInsufficientStock,
				ProductID:   product.ProductID,
				ProductName: product.Name,
			}
		}

		total = total.Add(line.OrderedPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		product.Quantity -= line.Quantity

		items = append(items, domain.OrderItem{
			ProductID:    product.ProductID,
			Name:         product.Name,
			Quantity:     line.Quantity,
			OrderedPrice: line.OrderedPrice,
			Price:        product.Price,
		})
	}

	touched := make([]domain.Product, 0, len(order))
	for _, id := range order {
		touched = append(touched, *working[id])
	}

	return items, total, touched, nil
}

func validateCart(userID string, lines []domain.CartLine) error {
	if userID == "" {
		return validationError("userId is required")
	}
	if len(lines) == 0 {
		return validationError("cartItems must not be empty")
	}
	for i, line := range lines {
		switch {
		case line.ProductID == "":
			return validationError("cartItems[%d]: productId is required", i)
		case line.Quantity <= 0:
			return validationError("cartItems[%d]: quantity must be positive", i)
		case line.OrderedPrice.IsNegative():
			return validationError("cartItems[%d]: orderedPrice must not be negative", i)
		}
	}
	return nil
}

// keepMintedCode persists a cadence code minted by a checkout that went on to
// fail. snap holds no other changes at that point.
func (p *Processor) keepMintedCode(ctx context.Context, snap *domain.Snapshot, minted *domain.DiscountCode) {
	if minted == nil {
		return
	}
	if err := p.writer.Write(ctx, snap); err != nil {
		p.logger.Error("failed to persist minted discount code", "error", err, "code", minted.Code)
	}
}

func (p *Processor) publish(ctx context.Context, user domain.User, outcome *Outcome) {
	if p.publisher == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		OrderID:         outcome.Order.OrderID,
		UserID:          user.UserID,
		UserName:        user.Name,
		Email:           user.Email,
		ItemCount:       len(outcome.Order.Items),
		FinalAmount:     outcome.Order.FinalAmount,
		NewDiscountCode: outcome.NewDiscountCode,
		Timestamp:       outcome.Order.Date,
	}
	if err := p.publisher.Publish(ctx, user.UserID, event); err != nil {
		p.logger.Error("failed to publish order placed event", "error", err, "order_id", outcome.Order.OrderID)
	}
}

// GenerateDiscountCode checks whether userID's next order lands on the
// cadence, counting only that user's orders, and hands out a code if so.
func (p *Processor) GenerateDiscountCode(ctx context.Context, userID string) (discount.Eligibility, error) {
	if userID == "" {
		return discount.Eligibility{}, validationError("userId is required")
	}

	p.writer.Lock()
	defer p.writer.Unlock()

	snap, err := p.load(ctx)
	if err != nil {
		return discount.Eligibility{}, err
	}

	idx, ok := snap.FindUser(userID)
	if !ok {
		return discount.Eligibility{}, &Error{Kind: KindUserNotFound}
	}

	eligibility, minted, err := p.engine.CheckEligibilityAndIssue(snap, &snap.Users[idx])
	if err != nil {
		return discount.Eligibility{}, err
	}

	if minted {
		if err := p.commit(ctx, snap); err != nil {
			return discount.Eligibility{}, err
		}
		p.metrics.CodeIssued(ctx, "eligibility")
		p.logger.Info("discount code issued on request", "user_id", userID, "code", eligibility.Code.Code)
	}

	return eligibility, nil
}

// SetDiscountCadence changes how often checkout mints a code. Only admins may
// call it.
func (p *Processor) SetDiscountCadence(ctx context.Context, requesterID string, cadence int) error {
	p.writer.Lock()
	defer p.writer.Unlock()

	snap, err := p.load(ctx)
	if err != nil {
		return err
	}

	idx, ok := snap.FindUser(requesterID)
	if !ok || !snap.Users[idx].IsAdmin() {
		return &Error{Kind: KindUnauthorized}
	}

	if cadence < 1 {
		return validationError("discountOrder must be a positive number")
	}

	snap.DiscountOrder = cadence
	if err := p.commit(ctx, snap); err != nil {
		return err
	}

	p.logger.Info("discount cadence updated", "discount_order", cadence, "user_id", requesterID)
	return nil
}

func (p *Processor) DiscountCadence(ctx context.Context) (int, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return 0, err
	}
	return discount.Normalize(snap.DiscountOrder), nil
}

func (p *Processor) DiscountCodes(ctx context.Context) ([]domain.DiscountCode, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.DiscountCodes, nil
}

func (p *Processor) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	idx, ok := snap.FindUser(userID)
	if !ok {
		return nil, &Error{Kind: KindUserNotFound}
	}

	orders := snap.Users[idx].Orders
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (p *Processor) UserOrderCount(ctx context.Context, userID string) (int, error) {
	orders, err := p.UserOrders(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// AllOrders lists every order in the store, newest first.
func (p *Processor) AllOrders(ctx context.Context) ([]domain.PlacedOrder, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]domain.PlacedOrder, 0, snap.TotalOrders())
	for _, u := range snap.Users {
		for _, o := range u.Orders {
			all = append(all, domain.PlacedOrder{Order: o, UserID: u.UserID, UserName: u.Name})
		}
	}

	slices.SortStableFunc(all, func(a, b domain.PlacedOrder) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})

	return all, nil
}

func (p *Processor) load(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := p.writer.Read(ctx)
	if err != nil {
		return nil, &Error{Kind: KindStoreUnavailable, Err: err}
	}
	if snap == nil || snap.Users == nil {
		return nil, &Error{Kind: KindStoreUnavailable, Err: store.ErrUnavailable}
	}
	return snap, nil
}

func (p *Processor) commit(ctx context.Context, snap *domain.Snapshot) error {
	if err := p.writer.Write(ctx, snap); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			p.logger.Warn("document changed underneath this write", "error", err)
		}
		return &Error{Kind: KindPersistence, Err: err}
	}
	return nil
}
