package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/email"
	"github.com/shopspring/decimal"
)

// Mailer sends order confirmations. *email.Service satisfies it.
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []email.OrderItem) error
}

// Handler processes activity events for sending notifications
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent processes an activity event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event activity.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.EventType {
	case activity.EventOrderPlaced:
		return h.handleOrderPlaced(event)
	default:
		log.Printf("[Notifier] %s from client %s", event.EventType, event.ClientID)
		return nil
	}
}

func (h *Handler) handleOrderPlaced(event activity.Event) error {
	var e activity.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s", e.OrderID)

	if e.Email == "" {
		log.Printf("[Notifier] Order %s has no contact email", e.OrderID)
		return nil
	}

	total, err := decimal.NewFromString(e.Total)
	if err != nil {
		log.Printf("[Notifier] Invalid total %q for order %s", e.Total, e.OrderID)
		return err
	}

	emailItems := make([]email.OrderItem, 0, len(e.Items))
	for _, item := range e.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			log.Printf("[Notifier] Invalid price %q for product %d", item.Price, item.ProductID)
			return err
		}
		emailItems = append(emailItems, email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	if err := h.mailer.SendOrderConfirmation(e.Email, e.OrderID, total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", e.Email, e.OrderID)
	return nil
}
