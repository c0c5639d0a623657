package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

// StorageKey is where the cart snapshot lives in durable storage
const StorageKey = "cart"

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Line is a product snapshot plus a purchased quantity. The product fields
// are flattened next to quantity in the persisted snapshot.
type Line struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price x quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store holds the insertion-ordered cart lines and writes the whole
// snapshot to durable storage after every mutation. There is at most one
// line per product ID and every quantity is positive.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	storage  store.KVStore
	activity *activity.Recorder
	// unread is set while the persisted snapshot could not be read. The
	// snapshot is not overwritten until a read succeeds.
	unread bool
}

type Option func(*Store)

// WithActivity publishes a CartUpdated event after each mutation
func WithActivity(r *activity.Recorder) Option {
	return func(s *Store) { s.activity = r }
}

// Open rehydrates the cart from storage. A missing snapshot yields an empty
// cart; a snapshot that fails to parse is logged, discarded, and also yields
// an empty cart. When storage cannot be read the snapshot is kept and read
// again before the next write.
func Open(ctx context.Context, kv store.KVStore, opts ...Option) *Store {
	s := &Store{storage: kv, unread: true}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		log.Printf("[Cart] Failed to load cart snapshot: %v", err)
	}
	return s
}

// load reads the persisted snapshot and merges it under the in-memory
// lines. Must hold s.mu or be called before the store is shared.
func (s *Store) load(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return err
	}
	s.unread = false
	if !ok {
		return nil
	}

	persisted, err := decodeSnapshot(raw)
	if err != nil {
		log.Printf("[Cart] Discarding corrupted cart snapshot: %v", err)
		if err := s.storage.Delete(ctx, StorageKey); err != nil {
			log.Printf("[Cart] Failed to delete corrupted snapshot: %v", err)
		}
		return nil
	}
	s.lines = mergeLines(persisted, s.lines)
	return nil
}

// mergeLines appends current to persisted, adding quantities of lines for
// the same product
func mergeLines(persisted, current []Line) []Line {
	out := make([]Line, len(persisted), len(persisted)+len(current))
	copy(out, persisted)
	for _, l := range current {
		merged := false
		for i := range out {
			if out[i].ID == l.ID {
				out[i].Quantity += l.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, l)
		}
	}
	return out
}

// decodeSnapshot parses a persisted snapshot and repairs the one-line-per-
// product invariant in case the snapshot was written by something else.
func decodeSnapshot(raw string) ([]Line, error) {
	var decoded []Line
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(decoded))
	index := make(map[int64]int, len(decoded))
	for _, l := range decoded {
		if l.Quantity <= 0 {
			continue
		}
		if i, dup := index[l.ID]; dup {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(lines)
		lines = append(lines, l)
	}
	return lines, nil
}

func (s *Store) find(productID int64) int {
	for i, l := range s.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for p by quantity, appending a new line if p is
// not in the cart yet.
func (s *Store) Add(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	if i := s.find(p.ID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, Line{Product: p, Quantity: quantity})
	}
	s.commit(ctx, "add", p.ID)
	s.mu.Unlock()
	return nil
}

// AddOne adds a single unit of p
func (s *Store) AddOne(ctx context.Context, p catalog.Product) error {
	return s.Add(ctx, p, 1)
}

// Remove deletes the line for productID; absent lines are a no-op.
func (s *Store) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID int64) {
	i := s.find(productID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	s.commit(ctx, "remove", productID)
}

// SetQuantity replaces the quantity of a line. Zero or negative removes it.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(ctx, productID)
		return
	}
	i := s.find(productID)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = quantity
	s.commit(ctx, "set", productID)
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.commit(ctx, "clear", 0)
}

// commit persists the snapshot and records the change. Must hold s.mu.
// Write failures are logged; there is no retry.
func (s *Store) commit(ctx context.Context, action string, productID int64) {
	if s.unread {
		if err := s.load(ctx); err != nil {
			log.Printf("[Cart] Snapshot still unreadable, not persisting: %v", err)
		}
	}
	if !s.unread {
		s.persist(ctx)
	}

	s.activity.Record(ctx, activity.EventCartUpdated, activity.CartUpdated{
		Action:    action,
		ProductID: productID,
		Lines:     len(s.lines),
		ItemCount: s.itemCount(),
		Total:     s.total().StringFixed(2),
	})
}

func (s *Store) persist(ctx context.Context) {
	snapshot := s.lines
	if snapshot == nil {
		snapshot = []Line{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("[Cart] Failed to encode cart snapshot: %v", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, string(data)); err != nil {
		log.Printf("[Cart] Failed to persist cart snapshot: %v", err)
	}
}

// Lines returns a copy of the cart lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Line returns the line for productID, if any
func (s *Store) Line(productID int64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(productID); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Total is the sum of price x quantity over all lines
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

func (s *Store) total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// ItemCount is the sum of quantities over all lines
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemCount()
}

func (s *Store) itemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}
