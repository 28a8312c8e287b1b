package chatflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStorageKey is the key the flow collection is stored under.
const DefaultStorageKey = "chatbot-flows"

// KV is the key-value capability a Store persists through.
// Get reports ok=false with a nil error when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store saves named flow snapshots as one JSON collection under a single key.
//
// Storage failures never reach the caller: unreadable collections are treated
// as empty and failed writes are logged as warnings. A collection that could
// not be fetched is never overwritten. Store does not validate
// flows; callers run a Validator first.
type Store struct {
	mu     sync.Mutex
	kv     KV
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides DefaultStorageKey.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger storage warnings go to.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for created/updated stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store backed by kv.
func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultStorageKey,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends a new flow and returns its id.
func (s *Store) Save(ctx context.Context, name string, nodes []Node, edges []Edge) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	f := Flow{
		ID:        uuid.NewString(),
		Name:      name,
		Nodes:     nonNilNodes(nodes),
		Edges:     nonNilEdges(edges),
		CreatedAt: now,
		UpdatedAt: now,
	}

	flows, ok := s.read(ctx)
	if !ok {
		s.logger.Warn("chatflow: flow not persisted, collection unreadable", "key", s.key, "id", f.ID)
		return f.ID
	}
	s.write(ctx, append(flows, f))
	return f.ID
}

// List returns every saved flow in save order.
func (s *Store) List(ctx context.Context) []Flow {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows, _ := s.read(ctx)
	return flows
}

// Load returns the flow with the given id, or ErrFlowNotFound.
func (s *Store) Load(ctx context.Context, id string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows, _ := s.read(ctx)
	for _, f := range flows {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, ErrFlowNotFound
}

// Update replaces a flow's nodes and edges and refreshes its updated stamp.
// Returns ErrFlowNotFound if the id is unknown.
func (s *Store) Update(ctx context.Context, id string, nodes []Node, edges []Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows, ok := s.read(ctx)
	if !ok {
		return ErrFlowNotFound
	}
	for i := range flows {
		if flows[i].ID == id {
			flows[i].Nodes = nonNilNodes(nodes)
			flows[i].Edges = nonNilEdges(edges)
			flows[i].UpdatedAt = s.now().UTC()
			s.write(ctx, flows)
			return nil
		}
	}
	return ErrFlowNotFound
}

// Delete removes a flow. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows, ok := s.read(ctx)
	if !ok {
		return
	}
	kept := make([]Flow, 0, len(flows))
	for _, f := range flows {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(flows) {
		return
	}
	s.write(ctx, kept)
}

// read loads the collection, falling back to an empty one on any failure.
// ok is false when the KV could not be read; callers must not write the
// fallback back over data they never saw. An unparsable payload reports ok
// and is replaced on the next write.
func (s *Store) read(ctx context.Context) (flows []Flow, ok bool) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("chatflow: read flows", "key", s.key, "error", err)
		return []Flow{}, false
	}
	if !found || raw == "" {
		return []Flow{}, true
	}

	if err := json.Unmarshal([]byte(raw), &flows); err != nil {
		s.logger.Warn("chatflow: parse flows", "key", s.key, "error", err)
		return []Flow{}, true
	}
	if flows == nil {
		flows = []Flow{}
	}
	return flows, true
}

func (s *Store) write(ctx context.Context, flows []Flow) {
	b, err := json.Marshal(flows)
	if err != nil {
		s.logger.Warn("chatflow: encode flows", "key", s.key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		s.logger.Warn("chatflow: write flows", "key", s.key, "error", err)
	}
}

func nonNilNodes(n []Node) []Node {
	if n == nil {
		return []Node{}
	}
	return n
}

func nonNilEdges(e []Edge) []Edge {
	if e == nil {
		return []Edge{}
	}
	return e
}
