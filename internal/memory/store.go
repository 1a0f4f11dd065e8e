package memory

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCapacity is the context window used when none is configured.
const DefaultCapacity = 10

// ErrInvalidCapacity is returned by NewStore for a non-positive capacity.
var ErrInvalidCapacity = errors.New("memory capacity must be positive")

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how memory IDs are produced.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger attaches a logger for eviction diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

type entry struct {
	Memory
	seq uint64
}

// Store is a bounded, importance-weighted memory log.
//
// When an Add pushes the store over capacity, entries are ranked by importance
// (highest first) and only the first capacity entries survive. Entries with
// equal importance keep insertion order, so the older of two equally important
// memories is retained. Store is not safe for concurrent use.
type Store struct {
	entries  []entry
	capacity int
	seq      uint64
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewStore creates a Store holding at most capacity memories.
func NewStore(capacity int, opts ...Option) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	s := &Store{
		capacity: capacity,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Capacity returns the configured context window.
func (s *Store) Capacity() int { return s.capacity }

// Len returns the number of memories currently held.
func (s *Store) Len() int { return len(s.entries) }

// Add records a new memory and applies the retention policy.
func (s *Store) Add(content string, typ Type, importance int) Memory {
	s.seq++
	m := Memory{
		ID:         s.newID(),
		Content:    content,
		Timestamp:  s.now(),
		Type:       typ,
		Importance: importance,
	}
	s.entries = append(s.entries, entry{Memory: m, seq: s.seq})

	if len(s.entries) > s.capacity {
		s.evict()
	}
	return m
}

func (s *Store) evict() {
	ranked := slices.Clone(s.entries)
	slices.SortStableFunc(ranked, func(a, b entry) int {
		return cmp.Compare(b.Importance, a.Importance)
	})
	dropped := ranked[s.capacity:]
	for _, e := range dropped {
		s.logger.Debug("evicted memory",
			zap.String("id", e.ID),
			zap.String("type", string(e.Type)),
			zap.Int("importance", e.Importance))
	}
	s.entries = ranked[:s.capacity:s.capacity]
}

// Recent returns up to count memories, newest first. A count of zero or less
// returns none.
func (s *Store) Recent(count int) []Memory {
	if count <= 0 {
		return []Memory{}
	}
	sorted := slices.Clone(s.entries)
	slices.SortFunc(sorted, func(a, b entry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	if count < len(sorted) {
		sorted = sorted[:count]
	}
	out := make([]Memory, len(sorted))
	for i, e := range sorted {
		out[i] = e.Memory
	}
	return out
}

// All returns the retained memories in store order.
func (s *Store) All() []Memory {
	out := make([]Memory, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Memory
	}
	return out
}

// Export writes every retained memory to w as JSON lines, oldest first.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	list := s.Recent(s.Len())
	for i := len(list) - 1; i >= 0; i-- {
		if err := enc.Encode(list[i]); err != nil {
			return fmt.Errorf("export memory %s: %w", list[i].ID, err)
		}
	}
	return nil
}
