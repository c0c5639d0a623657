package orders

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotCancellable   = errors.New("order can no longer be cancelled")
	ErrUnknownStatusTab = errors.New("unknown status tab")
)

// Item is one product line of a placed order
type Item struct {
	ProductID int64           `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is an order as listed by the order service
type Order struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	Status            Status          `json:"status"`
	Total             decimal.Decimal `json:"total"`
	Items             int             `json:"items"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	Products          []Item          `json:"products"`
}

// Cancellable reports whether the order can still be cancelled
func (o Order) Cancellable() bool {
	return o.Status == StatusProcessing
}

// StatusInfo is the response of the order status endpoint
type StatusInfo struct {
	ID             string `json:"id"`
	Status         Status `json:"status"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

// Page is one page of the order history
type Page struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	TotalItems int     `json:"totalItems"`
}

// Address is a shipping or billing address. Phone is only set on shipping.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// RequestItem is a cart line as sent in an order request
type RequestItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// Request is the body of an order placement
type Request struct {
	Items           []RequestItem `json:"items"`
	Email           string        `json:"email"`
	ShippingAddress Address       `json:"shippingAddress"`
	BillingAddress  Address       `json:"billingAddress"`
	PaymentMethod   string        `json:"paymentMethod"`
	TotalAmount     string        `json:"totalAmount"`
}

// Confirmation is the order service response to a placement
type Confirmation struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Tab is an order history status tab
type Tab string

const (
	TabAll        Tab = "all"
	TabProcessing Tab = "processing"
	TabDelivered  Tab = "delivered"
	TabCancelled  Tab = "cancelled"
)

var Tabs = []Tab{TabAll, TabProcessing, TabDelivered, TabCancelled}

// ParseTab accepts a tab name in any case; empty means all
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TabAll, nil
	}
	for _, known := range Tabs {
		if t == known {
			return t, nil
		}
	}
	return "", ErrUnknownStatusTab
}

// Filter returns the orders shown under tab, keeping their order. Status
// matching is case-insensitive.
func Filter(orders []Order, tab Tab) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if tab == TabAll || strings.EqualFold(string(o.Status), string(tab)) {
			out = append(out, o)
		}
	}
	return out
}

// Counts returns the number of orders under each tab
func Counts(orders []Order) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs))
	for _, tab := range Tabs {
		counts[tab] = len(Filter(orders, tab))
	}
	return counts
}
