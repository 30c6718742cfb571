package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

// MemoryStore provides in-memory inventory storage.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// Verify interface compliance
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding records.
func NewMemoryStore(records ...Record) (*MemoryStore, error) {
	s := &MemoryStore{records: make(map[string]Record, len(records))}
	for _, r := range records {
		if err := s.Put(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(r Record) error {
	if err := r.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Identity] = r
	return nil
}

// Get returns the record for identity.
func (s *MemoryStore) Get(identity string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[identity]
	return r, ok
}

// List returns all records sorted by identity.
func (s *MemoryStore) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// FetchQuantity implements Lookup.
func (s *MemoryStore) FetchQuantity(ctx context.Context, identity string) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, errors.Wrap(err, "fetch quantity")
	}

	r, ok := s.Get(identity)
	if !ok {
		return types.Snapshot{}, notFound(identity)
	}
	return r.Snapshot(), nil
}

// SubtractQuantity implements Subtractor. The available amount never goes
// below zero.
func (s *MemoryStore) SubtractQuantity(ctx context.Context, identity string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "subtract quantity")
	}
	if amount < 0 {
		return errors.Newf("ID %s: amount to subtract cannot be negative, got %s", identity, units.FormatAmount(amount))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[identity]
	if !ok {
		return notFound(identity)
	}

	remaining := decimal.NewFromFloat(r.Available).Sub(decimal.NewFromFloat(amount))
	if remaining.IsNegative() {
		return insufficient(identity, r.Available, amount)
	}

	r.Available = remaining.Round(units.Precision).InexactFloat64()
	s.records[identity] = r
	return nil
}
