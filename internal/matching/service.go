// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

// Package matching ranks candidate profiles by shared interests and keeps
// the profile cache consistent with the store on writes.
package matching

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kindred-dev/kindred/internal/cache"
	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/metrics"
	"github.com/kindred-dev/kindred/internal/ranking"
	"github.com/kindred-dev/kindred/internal/store"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	loadTimeout = 5 * time.Second
)

// Options configures a Service. Store, Cache and Catalog are required.
type Options struct {
	Store   store.ProfileStore
	Cache   *cache.ProfileCache[ProfileView]
	Catalog *interest.Catalog
	// Tasks runs post-commit cache refreshes. Nil means entries are only
	// invalidated and re-warmed by the next read.
	Tasks *Dispatcher

	DefaultLimit int
	MaxLimit     int
}

// Service implements profile management and match lookup.
type Service struct {
	store   store.ProfileStore
	cache   *cache.ProfileCache[ProfileView]
	catalog *interest.Catalog
	tasks   *Dispatcher
	loads   singleflight.Group
	// writes counts committed writes. A load that observes a change skips
	// its cache fill so it cannot overwrite newer state.
	writes atomic.Uint64

	defaultLimit int
	maxLimit     int
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, kerr.New(kerr.CodeServerConfigInvalid, "profile store is required")
	}
	if opts.Cache == nil {
		return nil, kerr.New(kerr.CodeServerConfigInvalid, "profile cache is required")
	}
	if opts.Catalog == nil {
		return nil, kerr.New(kerr.CodeServerConfigInvalid, "interest catalog is required")
	}

	s := &Service{
		store:        opts.Store,
		cache:        opts.Cache,
		catalog:      opts.Catalog,
		tasks:        opts.Tasks,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
	}
	if s.maxLimit <= 0 {
		s.maxLimit = MaxLimit
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultLimit
	}
	if s.defaultLimit > s.maxLimit {
		return nil, kerr.Errorf(kerr.CodeServerConfigInvalid,
			"default limit %d exceeds max limit %d", s.defaultLimit, s.maxLimit)
	}
	return s, nil
}

// Catalog returns the interest catalog used for encoding.
func (s *Service) Catalog() *interest.Catalog { return s.catalog }

// DefaultLimit is the match and list page size used when a caller gives none.
func (s *Service) DefaultLimit() int { return s.defaultLimit }

// CreateProfile persists a new profile and returns its id. Interest names
// outside the catalog are ignored.
func (s *Service) CreateProfile(ctx context.Context, in CreateProfileInput) (int64, error) {
	p := &store.Profile{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Category:  store.Category(strings.ToUpper(strings.TrimSpace(in.Category))),
		City:      strings.TrimSpace(in.City),
		Interests: s.catalog.Encode(in.Interests),
	}
	if err := p.Validate(); err != nil {
		return 0, kerr.Wrap(err, kerr.CodeMatchingProfileInvalid, "invalid profile")
	}
	if unknown := s.catalog.Unknown(in.Interests); len(unknown) > 0 {
		slog.Debug("ignoring unknown interests", "unknown", unknown)
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		return 0, err
	}
	slog.Info("profile created", "user_id", p.ID, "category", p.Category)
	return p.ID, nil
}

// UpdateInterests replaces the interest set of profile id.
func (s *Service) UpdateInterests(ctx context.Context, id int64, names []string) error {
	p, err := s.store.UpdateInterests(ctx, id, s.catalog.Encode(names))
	if err != nil {
		return err
	}

	view := newView(s.catalog, p)
	s.committed(ctx, id)
	s.dispatch(Task{
		Kind:   TaskRefresh,
		UserID: id,
		Run: func(ctx context.Context) error {
			return s.cache.Put(ctx, id, view)
		},
	})
	return nil
}

// GetProfile returns the projection of profile id, from the cache when
// possible. Cache failures degrade to a store read.
func (s *Service) GetProfile(ctx context.Context, id int64) (*ProfileView, error) {
	view, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		slog.Warn("profile cache read failed, falling back to store", "user_id", id, "error", err)
	}
	if ok {
		return &view, nil
	}

	// The shared load is detached from any single caller; each caller
	// stops waiting when its own context ends.
	ch := s.loads.DoChan(loadKey(id), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), id)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	loaded := res.Val.(ProfileView)
	// Callers sharing a flight must not alias the same slice.
	loaded.Interests = append([]string(nil), loaded.Interests...)
	if loaded.Interests == nil {
		loaded.Interests = []string{}
	}
	return &loaded, nil
}

// ListProfiles returns a page of profiles ordered by id.
func (s *Service) ListProfiles(ctx context.Context, offset, limit int) ([]ProfileView, error) {
	opts := store.ListOpts{Offset: offset, Limit: limit}
	if err := opts.Validate(); err != nil {
		return nil, kerr.Wrap(err, kerr.CodeMatchingRequestInvalid, "invalid page")
	}
	if opts.Limit > s.maxLimit {
		opts.Limit = s.maxLimit
	}

	profiles, err := s.store.ListProfiles(ctx, opts)
	if err != nil {
		return nil, err
	}
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, newView(s.catalog, p))
	}
	return views, nil
}

// DeleteProfile removes profile id and its cache entry.
func (s *Service) DeleteProfile(ctx context.Context, id int64) error {
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}

	s.committed(ctx, id)
	// Queued behind any pending refresh for id so it cannot resurrect the entry.
	s.dispatch(Task{
		Kind:   TaskInvalidate,
		UserID: id,
		Run: func(ctx context.Context) error {
			return s.cache.Invalidate(ctx, id)
		},
	})
	slog.Info("profile deleted", "user_id", id)
	return nil
}

// Matches returns up to limit profiles from the opposite category ranked by
// the number of shared interests. Limits above the configured maximum are
// clamped.
func (s *Service) Matches(ctx context.Context, id int64, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, kerr.Errorf(kerr.CodeMatchingRequestInvalid, "limit must be positive, got %d", limit)
	}
	limit = min(limit, s.maxLimit)

	start := time.Now()
	defer func() { metrics.MatchDuration.Observe(time.Since(start).Seconds()) }()

	query, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		scanErr error
		scanned int
	)
	candidates := func(yield func(ranking.Candidate[*store.Profile]) bool) {
		for p, err := range s.store.Candidates(ctx, query.ID, query.Category) {
			if err != nil {
				scanErr = err
				return
			}
			scanned++
			if !yield(ranking.Candidate[*store.Profile]{ID: p.ID, Vector: p.Interests, Payload: p}) {
				return
			}
		}
	}

	top := ranking.TopK(query.Interests, limit, candidates)
	metrics.MatchCandidates.Observe(float64(scanned))
	if scanErr != nil {
		return nil, scanErr
	}

	matches := make([]Match, 0, len(top))
	for _, sc := range top {
		matches = append(matches, Match{
			Candidate: newView(s.catalog, sc.Payload),
			Score:     sc.Score,
		})
	}
	slog.Debug("matches computed", "user_id", id, "scanned", scanned, "returned", len(matches))
	return matches, nil
}

func (s *Service) load(ctx context.Context, id int64) (ProfileView, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	gen := s.writes.Load()
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return ProfileView{}, err
	}
	view := newView(s.catalog, p)
	if s.writes.Load() != gen {
		return view, nil
	}
	if err := s.cache.Put(ctx, id, view); err != nil {
		slog.Warn("profile cache fill failed", "user_id", id, "error", err)
	}
	return view, nil
}

// committed runs after a write to id commits. Later reads start a fresh
// load instead of joining one that began before the write.
func (s *Service) committed(ctx context.Context, id int64) {
	s.writes.Add(1)
	s.loads.Forget(loadKey(id))
	s.invalidate(ctx, id)
}

func loadKey(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Warn("profile cache invalidation failed", "user_id", id, "error", err)
	}
}

func (s *Service) dispatch(t Task) {
	if s.tasks == nil {
		return
	}
	s.tasks.Dispatch(t)
}
