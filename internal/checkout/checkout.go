package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/orders"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the only payment method the storefront offers
const PaymentMethod = "credit_card"

var (
	ErrEmptyCart = errors.New("cart is empty")

	// TaxRate applied to the cart subtotal
	TaxRate = decimal.RequireFromString("0.10")
)

// Summary is the order summary shown next to the checkout form
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Summarize prices a subtotal: shipping is free, tax is TaxRate, and every
// amount is rounded to cents.
func Summarize(subtotal decimal.Decimal) Summary {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		Shipping: decimal.Zero,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// BuildRequest assembles the order payload from cart lines and a validated
// form.
func BuildRequest(lines []cart.Line, f Form) orders.Request {
	items := make([]orders.RequestItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		items = append(items, orders.RequestItem{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Category: l.Category,
			Image:    l.Image,
			Quantity: l.Quantity,
		})
		subtotal = subtotal.Add(l.Subtotal())
	}

	return orders.Request{
		Items:           items,
		Email:           strings.TrimSpace(f.Email),
		ShippingAddress: f.Shipping(),
		BillingAddress:  f.Billing(),
		PaymentMethod:   PaymentMethod,
		TotalAmount:     Summarize(subtotal).Total.StringFixed(2),
	}
}

// OrderPlacer submits an order to the order service
type OrderPlacer interface {
	Create(ctx context.Context, req orders.Request) (orders.Confirmation, error)
}

// Service places orders for the contents of a cart
type Service struct {
	cart     *cart.Store
	orders   OrderPlacer
	activity *activity.Recorder
}

type Option func(*Service)

// WithActivity publishes an OrderPlaced event after each placed order
func WithActivity(r *activity.Recorder) Option {
	return func(s *Service) { s.activity = r }
}

func NewService(c *cart.Store, placer OrderPlacer, opts ...Option) *Service {
	s := &Service{cart: c, orders: placer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary prices the current cart
func (s *Service) Summary() Summary {
	return Summarize(s.cart.Total())
}

// Place validates the form and submits the cart as an order. The cart is
// cleared only after the order service accepts the order.
func (s *Service) Place(ctx context.Context, f Form) (orders.Confirmation, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return orders.Confirmation{}, ErrEmptyCart
	}
	if err := f.Validate(); err != nil {
		return orders.Confirmation{}, err
	}

	req := BuildRequest(lines, f)
	conf, err := s.orders.Create(ctx, req)
	if err != nil {
		return orders.Confirmation{}, fmt.Errorf("failed to place order: %w", err)
	}

	s.cart.Clear(ctx)
	log.Printf("[Checkout] Order %s placed: %s", conf.ID, req.TotalAmount)

	placed := activity.OrderPlaced{
		OrderID: conf.ID,
		Email:   req.Email,
		Items:   make([]activity.OrderLine, 0, len(req.Items)),
		Total:   req.TotalAmount,
	}
	for _, item := range req.Items {
		placed.Items = append(placed.Items, activity.OrderLine{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	s.activity.Record(ctx, activity.EventOrderPlaced, placed)

	return conf, nil
}
