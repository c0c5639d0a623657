package sandbox

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/sandbox/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const deliveryDays = 5

// PlaceOrder prices the request against the catalog and records a
// Processing order. The client's total must match the catalog total.
func (s *Server) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.Request
	if err := decodeBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		respondJSONError(w, "Order has no items", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ShippingAddress.Address) == "" {
		respondJSONError(w, "Shipping address is required", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod != checkout.PaymentMethod {
		respondJSONError(w, "Unsupported payment method", http.StatusBadRequest)
		return
	}

	items := make([]orders.Item, 0, len(req.Items))
	subtotal := decimal.Zero
	count := 0
	for _, item := range req.Items {
		p, ok := s.findProduct(item.ID)
		switch {
		case !ok:
			respondJSONError(w, fmt.Sprintf("Product %d not found", item.ID), http.StatusBadRequest)
			return
		case !p.InStock:
			respondJSONError(w, fmt.Sprintf("%s is out of stock", p.Name), http.StatusBadRequest)
			return
		case item.Quantity <= 0:
			respondJSONError(w, "Quantity must be positive", http.StatusBadRequest)
			return
		}
		items = append(items, orders.Item{ProductID: p.ID, Name: p.Name, Quantity: item.Quantity, Price: p.Price})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}

	total := checkout.Summarize(subtotal).Total
	claimed, err := decimal.NewFromString(req.TotalAmount)
	if err != nil || !claimed.Equal(total) {
		respondJSONError(w, "Order total does not match", http.StatusBadRequest)
		return
	}

	now := s.now().UTC()
	order := &orders.Order{
		ID:                "ORD-" + strings.ToUpper(uuid.New().String()[:8]),
		Date:              now.Format("2006-01-02"),
		Status:            orders.StatusProcessing,
		Total:             total,
		Items:             count,
		EstimatedDelivery: now.AddDate(0, 0, deliveryDays).Format("2006-01-02"),
		Products:          items,
	}

	userID := middleware.GetUserID(r.Context())
	s.mu.Lock()
	s.orders[userID] = append([]*orders.Order{order}, s.orders[userID]...)
	s.mu.Unlock()

	log.Printf("[Sandbox] Order %s placed by %s: %s", order.ID, userID, total.StringFixed(2))
	respondJSON(w, http.StatusCreated, orders.Confirmation{
		ID:      order.ID,
		Status:  "success",
		Message: "Order placed successfully",
	})
}

func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	if r.URL.Query().Get("size") == "" {
		size = 10
	}
	userID := middleware.GetUserID(r.Context())

	s.mu.RLock()
	all := make([]orders.Order, 0, len(s.orders[userID]))
	for _, o := range s.orders[userID] {
		all = append(all, *o)
	}
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, orders.Page{
		Orders:     paginate(all, page, size),
		Page:       page,
		Size:       size,
		TotalItems: len(all),
	})
}

// findOrder returns the caller's order. Must hold s.mu.
func (s *Server) findOrder(userID, orderID string) *orders.Order {
	for _, o := range s.orders[userID] {
		if o.ID == orderID {
			return o
		}
	}
	return nil
}

func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	s.mu.RLock()
	o := s.findOrder(userID, mux.Vars(r)["id"])
	var out orders.Order
	if o != nil {
		out = *o
	}
	s.mu.RUnlock()

	if o == nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// CancelOrder cancels an order that has not shipped yet
func (s *Server) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findOrder(userID, mux.Vars(r)["id"])
	if o == nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	if !o.Cancellable() {
		respondJSONError(w, "Order can no longer be cancelled", http.StatusConflict)
		return
	}
	o.Status = orders.StatusCancelled
	o.TrackingNumber = ""
	respondJSON(w, http.StatusOK, *o)
}

func (s *Server) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	s.mu.RLock()
	o := s.findOrder(userID, mux.Vars(r)["id"])
	var info orders.StatusInfo
	if o != nil {
		info = orders.StatusInfo{ID: o.ID, Status: o.Status, TrackingNumber: o.TrackingNumber}
	}
	s.mu.RUnlock()

	if o == nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// Advance moves an order through fulfilment: Processing -> Shipped ->
// Delivered. Shipping assigns a tracking number.
func (s *Server) Advance(orderID string) (orders.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.orders {
		for _, o := range list {
			if o.ID != orderID {
				continue
			}
			switch o.Status {
			case orders.StatusProcessing:
				o.Status = orders.StatusShipped
				o.TrackingNumber = "TRK-" + strings.ToUpper(uuid.New().String()[:9])
			case orders.StatusShipped:
				o.Status = orders.StatusDelivered
			default:
				return o.Status, fmt.Errorf("order %s is %s", orderID, o.Status)
			}
			return o.Status, nil
		}
	}
	return "", orders.ErrOrderNotFound
}
