// Package state keeps the per-user group snapshot that the rest of the
// application reads from. The upstream server is the source of truth: every
// mutation is followed by a resync, and a failed resync keeps the last good
// snapshot instead of wiping it.
package state

import (
	"context"
	"sync"

	"github.com/splitkaro/bff-go/internal/balance"
	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/prefs"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/session"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("state")

// Phase describes where a user's snapshot is in its lifecycle.
type Phase string

const (
	// PhaseUnloaded means no load has been attempted for this user yet.
	PhaseUnloaded Phase = "unloaded"
	// PhaseResolving means the initial load is in flight.
	PhaseResolving Phase = "resolving"
	// PhaseActive means the snapshot reflects the last successful sync.
	PhaseActive Phase = "active"
	// PhaseEmpty means the user has no groups, or the initial load failed.
	PhaseEmpty Phase = "empty"
	// PhaseRefreshing means a resync of an Active snapshot is in flight.
	PhaseRefreshing Phase = "refreshing"
	// PhaseStale means a resync failed and the snapshot shows older data.
	PhaseStale Phase = "stale"
)

// Snapshot is a copy of a user's synchronized group state.
type Snapshot struct {
	Phase     Phase            `json:"phase"`
	Groups    []domain.Group   `json:"groups"`
	Current   *domain.Group    `json:"current,omitempty"`
	Balances  []domain.Balance `json:"balances,omitempty"`
	Total     float64          `json:"total"`
	YourTotal float64          `json:"yourTotal"`
}

// Store synchronizes per-user group state against the upstream API.
type Store struct {
	groups port.GroupAPI
	prefs  port.Prefs
	logger *zap.Logger

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewStore creates an empty Store.
func NewStore(groups port.GroupAPI, prefStore port.Prefs, logger *zap.Logger) *Store {
	return &Store{
		groups:    groups,
		prefs:     prefStore,
		logger:    logger,
		snapshots: make(map[string]*Snapshot),
	}
}

// Init performs the initial load for a user: group list and stored group
// preference are fetched concurrently, then combined into an Active (or
// Empty) snapshot. A failed load yields an explicit Empty snapshot so the
// caller renders "no group" instead of a spinner that never resolves.
func (s *Store) Init(ctx context.Context, ident session.Identity) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Store.Init")
	defer span.End()

	s.setPhase(ident.UserID, PhaseResolving)

	var (
		groups    []domain.Group
		preferred string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.groups.MyGroups(gctx, ident.Token)
		return err
	})
	g.Go(func() error {
		// A broken pref store must not block login; fall back to the
		// first group.
		val, ok, err := s.prefs.Get(gctx, ident.UserID, prefs.KeyCurrentGroup)
		if err != nil {
			s.logger.Warn("reading group preference failed",
				zap.String("user_id", ident.UserID), zap.Error(err))
			return nil
		}
		if ok {
			preferred = val
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		// Servers that predate multi-group membership only answer the
		// single-group endpoint; try it before declaring the account empty.
		if single, ferr := s.groups.MyGroup(ctx, ident.Token); ferr == nil && single != nil {
			s.logger.Info("group list unavailable, using single-group endpoint",
				zap.String("user_id", ident.UserID))
			snap := buildSnapshot([]domain.Group{*single}, preferred, ident.UserID)
			s.put(ident.UserID, snap)
			return snap, nil
		}
		s.logger.Warn("initial group load failed",
			zap.String("user_id", ident.UserID), zap.Error(err))
		snap := Snapshot{Phase: PhaseEmpty}
		s.put(ident.UserID, snap)
		return snap, err
	}

	snap := buildSnapshot(groups, preferred, ident.UserID)
	s.put(ident.UserID, snap)
	return snap, nil
}

// Refresh re-fetches the group list and rebuilds the snapshot, keeping the
// currently selected group when it still exists. On failure the previous
// snapshot survives, marked Stale.
func (s *Store) Refresh(ctx context.Context, ident session.Identity) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Store.Refresh")
	defer span.End()

	s.mu.Lock()
	if prev, ok := s.snapshots[ident.UserID]; ok && prev.Phase == PhaseActive {
		prev.Phase = PhaseRefreshing
	}
	s.mu.Unlock()

	groups, err := s.groups.MyGroups(ctx, ident.Token)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()

		prev, ok := s.snapshots[ident.UserID]
		if !ok {
			snap := Snapshot{Phase: PhaseEmpty}
			s.snapshots[ident.UserID] = &snap
			return snap, err
		}
		prev.Phase = PhaseStale
		return *prev, err
	}

	preferred := ""
	s.mu.RLock()
	if prev, ok := s.snapshots[ident.UserID]; ok && prev.Current != nil {
		preferred = prev.Current.Code
	}
	s.mu.RUnlock()

	snap := buildSnapshot(groups, preferred, ident.UserID)
	if preferred != "" && snap.Current != nil && snap.Current.Code != preferred {
		// The selected group vanished from the refreshed list (left or
		// deleted on another device). Surface it instead of pretending
		// the silent fallback was the user's choice.
		snap.Phase = PhaseStale
		s.logger.Warn("selected group missing after refresh",
			zap.String("user_id", ident.UserID),
			zap.String("group_code", preferred))
	}
	s.put(ident.UserID, snap)
	return snap, nil
}

// Select switches the user's current group. Unknown identifiers trigger one
// refresh before giving up, so a group joined on another device is found.
func (s *Store) Select(ctx context.Context, ident session.Identity, groupID string) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Store.Select")
	defer span.End()

	if snap, ok := s.trySelect(ident.UserID, groupID); ok {
		s.persistSelection(ctx, ident.UserID, groupID)
		return snap, nil
	}

	if _, err := s.Refresh(ctx, ident); err != nil {
		return Snapshot{}, err
	}
	if snap, ok := s.trySelect(ident.UserID, groupID); ok {
		s.persistSelection(ctx, ident.UserID, groupID)
		return snap, nil
	}
	return Snapshot{}, &domain.ErrNotFound{Resource: "group", ID: groupID}
}

// Snapshot returns a copy of the user's snapshot, reporting whether one
// exists.
func (s *Store) Snapshot(userID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[userID]
	if !ok {
		return Snapshot{Phase: PhaseUnloaded}, false
	}
	return *snap, true
}

// Forget drops the user's snapshot, typically on logout.
func (s *Store) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
}

func (s *Store) trySelect(userID, groupID string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[userID]
	if !ok {
		return Snapshot{}, false
	}
	for i := range snap.Groups {
		if snap.Groups[i].Code == groupID {
			rebuilt := buildSnapshot(snap.Groups, groupID, userID)
			s.snapshots[userID] = &rebuilt
			return rebuilt, true
		}
	}
	return Snapshot{}, false
}

func (s *Store) persistSelection(ctx context.Context, userID, groupID string) {
	if err := s.prefs.Set(ctx, userID, prefs.KeyCurrentGroup, groupID); err != nil {
		s.logger.Warn("persisting group selection failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *Store) setPhase(userID string, phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.snapshots[userID]; ok {
		snap.Phase = phase
		return
	}
	s.snapshots[userID] = &Snapshot{Phase: phase}
}

func (s *Store) put(userID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userID] = &snap
}

// buildSnapshot picks the current group (preferred code when present, first
// group otherwise) and precomputes its balance aggregates.
func buildSnapshot(groups []domain.Group, preferred, userID string) Snapshot {
	if len(groups) == 0 {
		return Snapshot{Phase: PhaseEmpty}
	}

	current := &groups[0]
	for i := range groups {
		if preferred != "" && groups[i].Code == preferred {
			current = &groups[i]
			break
		}
	}

	balances := balance.Totals(current.Members)
	return Snapshot{
		Phase:     PhaseActive,
		Groups:    groups,
		Current:   current,
		Balances:  balances,
		Total:     balance.Total(current.Expenses),
		YourTotal: balance.ForUser(balances, userID),
	}
}
