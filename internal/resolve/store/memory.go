package store

import (
	"context"
	"sync"

	"msku-service/internal/resolve/model"
)

type Memory struct {
	mu   sync.RWMutex
	recs []model.Record
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) List(_ context.Context) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Record, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.recs[i], nil
	}
	return model.Record{}, ErrNotFound
}

func (m *Memory) Create(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == rec.ID || sameKey(r, rec) {
			return ErrDuplicate
		}
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *Memory) Update(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(rec.ID)
	if i < 0 {
		return ErrNotFound
	}
	for _, r := range m.recs {
		if r.ID != rec.ID && sameKey(r, rec) {
			return ErrDuplicate
		}
	}
	rec.CreatedAt = m.recs[i].CreatedAt
	m.recs[i] = rec
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return ErrNotFound
	}
	m.recs = append(m.recs[:i], m.recs[i+1:]...)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) index(id string) int {
	for i, r := range m.recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}
