package activity

import (
	"encoding/json"
	"time"
)

const (
	EventCartUpdated    = "CartUpdated"
	EventOrderPlaced    = "OrderPlaced"
	EventSessionStarted = "SessionStarted"
	EventSessionEnded   = "SessionEnded"
)

// Event is the envelope written to the activity topic
type Event struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	EventType  string          `json:"event_type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type CartUpdated struct {
	Action    string `json:"action"` // add, remove, set, clear
	ProductID int64  `json:"product_id,omitempty"`
	Lines     int    `json:"lines"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderPlaced struct {
	OrderID string      `json:"order_id"`
	Email   string      `json:"email"`
	Items   []OrderLine `json:"items"`
	Total   string      `json:"total"`
}

type SessionStarted struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Method string `json:"method"` // login, register, restore
}

type SessionEnded struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"` // logout, invalid_credential
}
