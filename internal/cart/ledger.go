// Package cart owns the session's cart lines and their mutations.
//
// The ledger is constructed once per session and is the only writer of
// its durable slot. Mutations run to completion before returning and
// persist the full record on every call; persistence is fire-and-forget
// because the storage adapter never reports failure.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/prianik/storefront/internal/cart/storage"
	"github.com/prianik/storefront/pkg/logger"
	"github.com/prianik/storefront/pkg/types"
)

// Line is one product/quantity pair, unique per product id. The json
// keys match the record the web storefront writes to its storage slot.
type Line struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	ImageRef  string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Currency  string  `json:"currency"`
}

// Item carries the caller-supplied product data at the moment of add.
// The ledger trusts it; nothing is reconciled until checkout.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice float64
	Currency  string
	ImageRef  string
}

// Ledger holds the cart lines in first-add order.
type Ledger struct {
	mu    sync.Mutex
	lines []Line
	store storage.Store
	log   *logger.Logger
}

// New builds a ledger backed by the provided slot. Sessions without a
// durable slot pass storage.NewNoop().
func New(store storage.Store, logg *logger.Logger) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	return &Ledger{store: store, log: logg}, nil
}

// Add merges the item into the cart. An existing line keeps its name,
// price, and image (first write wins) and only gains quantity; a new
// line is appended with the default currency applied when omitted.
// Add cannot fail: it always reports success.
func (l *Ledger) Add(ctx context.Context, item Item, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].ProductID == item.ProductID {
			l.lines[i].Quantity += quantity
			l.persist(ctx)
			return true
		}
	}

	currency := item.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	l.lines = append(l.lines, Line{
		ProductID: item.ProductID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		ImageRef:  item.ImageRef,
		Quantity:  quantity,
		Currency:  currency,
	})
	l.persist(ctx)
	return true
}

// SetQuantity overwrites the line's quantity. A quantity of zero or
// less removes the line; an absent product id is a no-op.
func (l *Ledger) SetQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		l.Remove(ctx, productID)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].ProductID == productID {
			l.lines[i].Quantity = quantity
			l.persist(ctx)
			return
		}
	}
}

// Remove deletes the matching line. Removing an absent id is a no-op.
func (l *Ledger) Remove(ctx context.Context, productID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.lines[:0]
	removed := false
	for _, line := range l.lines {
		if line.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	l.lines = kept
	if removed {
		l.persist(ctx)
	}
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = nil
	l.persist(ctx)
}

// Lines returns a copy of the cart in first-add order.
func (l *Ledger) Lines() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// ItemCount is the sum of all line quantities.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Total is the sum of unit price times quantity over all lines. The sum
// runs on decimals so repeated float prices do not drift.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, line := range l.lines {
		lineTotal := decimal.NewFromFloat(line.UnitPrice).
			Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
	}
	return total.InexactFloat64()
}

// Rehydrate loads the persisted record, replacing the cart when the
// record is shaped like cart lines. A missing or malformed record is
// discarded wholesale and the session starts empty.
func (l *Ledger) Rehydrate(ctx context.Context) {
	record, ok := l.store.Load(ctx)
	if !ok {
		return
	}

	var lines []Line
	if err := json.Unmarshal(record, &lines); err != nil {
		l.warn(ctx, "discarding malformed cart record", err)
		return
	}
	if err := validateLines(lines); err != nil {
		l.warn(ctx, "discarding invalid cart record", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = lines
}

func validateLines(lines []Line) error {
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		switch {
		case line.ProductID <= 0:
			return fmt.Errorf("line has invalid product id %d", line.ProductID)
		case line.Name == "":
			return fmt.Errorf("line %d has no name", line.ProductID)
		case line.UnitPrice < 0:
			return fmt.Errorf("line %d has negative price", line.ProductID)
		case line.Quantity <= 0:
			return fmt.Errorf("line %d has non-positive quantity", line.ProductID)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("duplicate line for product %d", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// persist writes the full record to the slot. Callers hold the mutex.
func (l *Ledger) persist(ctx context.Context) {
	lines := l.lines
	if lines == nil {
		lines = []Line{}
	}
	record, err := json.Marshal(lines)
	if err != nil {
		l.warn(ctx, "cart record not serializable, save skipped", err)
		return
	}
	l.store.Save(ctx, record)
}

func (l *Ledger) warn(ctx context.Context, msg string, err error) {
	if l.log == nil {
		return
	}
	l.log.Warn(l.log.WithField(ctx, "error", err.Error()), msg)
}
