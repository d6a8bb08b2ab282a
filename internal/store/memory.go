// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package store

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/kindred-dev/kindred/internal/interest"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(_ *StorageConfig) (ProfileStore, error) {
		return NewMemoryStore(), nil
	})
}

// Compile-time interface check.
var _ ProfileStore = (*MemoryStore)(nil)

// MemoryStore is an in-process ProfileStore. Each method holds the lock for
// its whole duration, which gives the same all-or-nothing behaviour as a
// database transaction.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64]Profile
	emails   map[string]int64
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[int64]Profile),
		emails:   make(map[string]int64),
		nextID:   1,
		now:      time.Now,
	}
}

func (m *MemoryStore) CreateProfile(ctx context.Context, p *Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.emails[p.Email]; taken {
		return kerr.Wrap(ErrConflict, kerr.CodeStoreProfileCreateConflict,
			"email "+p.Email+" already registered")
	}

	now := m.now().UTC()
	p.ID = m.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	m.nextID++

	m.profiles[p.ID] = *p
	m.emails[p.Email] = p.ID
	return nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, notFound(kerr.CodeStoreProfileGetNotFound, id)
	}
	return &p, nil
}

func (m *MemoryStore) UpdateInterests(ctx context.Context, id int64, interests interest.Vector) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, notFound(kerr.CodeStoreProfileUpdateNotFound, id)
	}
	p.Interests = interests
	p.UpdatedAt = m.now().UTC()
	m.profiles[id] = p
	return &p, nil
}

func (m *MemoryStore) DeleteProfile(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return notFound(kerr.CodeStoreProfileDeleteNotFound, id)
	}
	delete(m.profiles, id)
	delete(m.emails, p.Email)
	return nil
}

func (m *MemoryStore) ListProfiles(ctx context.Context, opts ListOpts) ([]*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(m.profiles))
	if opts.Offset >= len(ids) {
		return []*Profile{}, nil
	}
	ids = ids[opts.Offset:min(opts.Offset+opts.Limit, len(ids))]

	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		p := m.profiles[id]
		out = append(out, &p)
	}
	return out, nil
}

// Candidates iterates over a snapshot taken when iteration starts, so the
// lock is not held while the caller scores candidates.
func (m *MemoryStore) Candidates(ctx context.Context, excludeID int64, excludeCategory Category) iter.Seq2[*Profile, error] {
	return func(yield func(*Profile, error) bool) {
		m.mu.RLock()
		snapshot := make([]Profile, 0, len(m.profiles))
		for _, p := range m.profiles {
			if p.ID != excludeID && p.Category != excludeCategory {
				snapshot = append(snapshot, p)
			}
		}
		m.mu.RUnlock()

		slices.SortFunc(snapshot, func(a, b Profile) int { return cmp.Compare(a.ID, b.ID) })
		for i := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&snapshot[i], nil) {
				return
			}
		}
	}
}

func (m *MemoryStore) Close() error { return nil }

func notFound(code kerr.Code, id int64) error {
	return kerr.Wrap(ErrNotFound, code, "profile not found", kerr.FieldUserID(id))
}
