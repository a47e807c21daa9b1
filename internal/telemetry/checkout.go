package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CheckoutMetrics holds the instruments recorded by the order processor.
type CheckoutMetrics struct {
	checkouts metric.Int64Counter
	issued    metric.Int64Counter
	redeemed  metric.Int64Counter
	amount    metric.Float64Histogram
}

func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	checkouts, err := meter.Int64Counter("storefront.checkouts",
		metric.WithDescription("Checkout attempts by outcome."),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, err
	}

	issued, err := meter.Int64Counter("storefront.discount_codes.issued",
		metric.WithDescription("Discount codes minted, by trigger."),
		metric.WithUnit("{code}"),
	)
	if err != nil {
		return nil, err
	}

	redeemed, err := meter.Int64Counter("storefront.discount_codes.redeemed",
		metric.WithDescription("Discount codes consumed by placed orders."),
		metric.WithUnit("{code}"),
	)
	if err != nil {
		return nil, err
	}

	amount, err := meter.Float64Histogram("storefront.order.amount",
		metric.WithDescription("Final amount of placed orders."),
	)
	if err != nil {
		return nil, err
	}

	return &CheckoutMetrics{
		checkouts: checkouts,
		issued:    issued,
		redeemed:  redeemed,
		amount:    amount,
	}, nil
}

func (m *CheckoutMetrics) Checkout(ctx context.Context, outcome string) {
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *CheckoutMetrics) CodeIssued(ctx context.Context, trigger string) {
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

func (m *CheckoutMetrics) CodeRedeemed(ctx context.Context) {
	m.redeemed.Add(ctx, 1)
}

func (m *CheckoutMetrics) OrderAmount(ctx context.Context, amount float64) {
	m.amount.Record(ctx, amount)
}
