package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hamed0406/uptimealert/internal/domain"
	"github.com/hamed0406/uptimealert/internal/repo"
)

var _ repo.StatusStore = (*Store)(nil)

// Store keeps status records in process memory; nothing survives a restart.
type Store struct {
	mu      sync.RWMutex
	order   []domain.Target
	records map[domain.Target]domain.StatusRecord
}

func New() *Store {
	return &Store{records: make(map[domain.Target]domain.StatusRecord)}
}

func (m *Store) Init(ctx context.Context, targets []domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range targets {
		if _, ok := m.records[t]; ok {
			continue
		}
		m.order = append(m.order, t)
		m.records[t] = domain.InitialRecord()
	}
	return nil
}

func (m *Store) Get(ctx context.Context, t domain.Target) (domain.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[t]
	if !ok {
		return domain.StatusRecord{}, fmt.Errorf("%w: %s", repo.ErrUnknownTarget, t)
	}
	return r, nil
}

// Update is last-write-wins: when two writers race on the same target, the
// later one to take the lock determines the stored record. next runs under
// the lock and must not call back into the store.
func (m *Store) Update(ctx context.Context, t domain.Target, next func(domain.StatusRecord) domain.StatusRecord) (domain.StatusRecord, domain.StatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.records[t]
	if !ok {
		return domain.StatusRecord{}, domain.StatusRecord{}, fmt.Errorf("%w: %s", repo.ErrUnknownTarget, t)
	}
	cur := next(prev)
	m.records[t] = cur
	return prev, cur, nil
}

func (m *Store) Snapshot(ctx context.Context) ([]repo.TargetStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]repo.TargetStatus, 0, len(m.order))
	for _, t := range m.order {
		out = append(out, repo.TargetStatus{Target: t, Status: m.records[t]})
	}
	return out, nil
}
