package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/splitkaro/bff-go/internal/balance"
	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/session"
	"github.com/splitkaro/bff-go/internal/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var groupTracer = otel.Tracer("service/groups")

// GroupService reads and mutates group membership, keeping the snapshot store
// and the list cache in sync with every change.
type GroupService struct {
	api     port.GroupAPI
	store   *state.Store
	cache   port.Cache[[]domain.Group]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGroupService creates the group service.
func NewGroupService(
	api port.GroupAPI,
	store *state.Store,
	cache port.Cache[[]domain.Group],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GroupService {
	return &GroupService{api: api, store: store, cache: cache, metrics: metrics, logger: logger}
}

// cacheKey derives a cache key from the bearer token rather than the user id:
// two sessions of the same user may hold tokens with different lifetimes.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "groups:" + hex.EncodeToString(sum[:8])
}

// List returns every group the caller belongs to, cached briefly.
func (s *GroupService) List(ctx context.Context, ident session.Identity) ([]domain.Group, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.List")
	defer span.End()

	key := cacheKey(ident.Token)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("groups")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("groups")

	groups, err := s.api.MyGroups(ctx, ident.Token)
	if err != nil {
		s.metrics.IncrExternalError("expense-api")
		return nil, fmt.Errorf("list groups: %w", err)
	}
	s.cache.Set(key, groups)
	return groups, nil
}

// Current returns the caller's snapshot, running the initial load when none
// exists yet.
func (s *GroupService) Current(ctx context.Context, ident session.Identity) (state.Snapshot, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.Current")
	defer span.End()

	if snap, ok := s.store.Snapshot(ident.UserID); ok {
		return snap, nil
	}
	return s.store.Init(ctx, ident)
}

// MonthlySummary computes the per-member spending breakdown for one calendar
// month of the current group. An empty month means the current one.
func (s *GroupService) MonthlySummary(ctx context.Context, ident session.Identity, month string) (*domain.MonthlySummary, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.MonthlySummary")
	defer span.End()

	if month == "" {
		month = time.Now().Format("2006-01")
	}
	span.SetAttributes(attribute.String("month", month))

	parsed, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "month", Message: "month must be formatted YYYY-MM"}
	}

	snap, err := s.Current(ctx, ident)
	if err != nil {
		return nil, err
	}
	if snap.Current == nil {
		return nil, &domain.ErrNotFound{Resource: "group", ID: "current"}
	}

	group := snap.Current
	monthly := balance.InMonth(group.Expenses, parsed.Year(), parsed.Month())
	balances := balance.FilteredTotals(monthly, group.Members)
	total := balance.Total(monthly)

	shares := make([]domain.MemberShare, 0, len(group.Members))
	for i, m := range group.Members {
		shares = append(shares, domain.MemberShare{
			UserID:     m.UserID,
			Name:       m.Name,
			TotalSpent: balances[i].TotalSpent,
			Percent:    balance.Percent(balances[i].TotalSpent, total),
		})
	}

	return &domain.MonthlySummary{
		GroupCode: group.Code,
		Month:     month,
		Total:     total,
		YourTotal: balance.ForUser(balances, ident.UserID),
		Members:   shares,
	}, nil
}

// Create creates a group upstream, then resyncs and selects it.
func (s *GroupService) Create(ctx context.Context, ident session.Identity, req domain.CreateGroupRequest) (*domain.Group, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.Create")
	defer span.End()

	if req.GroupName == "" {
		return nil, &domain.ErrValidation{Field: "groupName", Message: "groupName is required"}
	}

	group, err := s.api.CreateGroup(ctx, ident.Token, req)
	if err != nil {
		s.metrics.IncrMutation("create_group", "error")
		return nil, err
	}
	s.metrics.IncrMutation("create_group", "success")

	s.cache.Delete(cacheKey(ident.Token))
	s.resyncAndSelect(ctx, ident, group.Code)
	return group, nil
}

// Join adds the caller to an existing group, then resyncs and selects it.
// "Already a member" conflicts pass through with the upstream message intact.
func (s *GroupService) Join(ctx context.Context, ident session.Identity, req domain.JoinGroupRequest) (*domain.JoinGroupResult, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.Join")
	defer span.End()
	span.SetAttributes(attribute.String("group.code", req.GroupCode))

	if req.GroupCode == "" {
		return nil, &domain.ErrValidation{Field: "groupCode", Message: "groupCode is required"}
	}

	result, err := s.api.JoinGroup(ctx, ident.Token, req)
	if err != nil {
		s.metrics.IncrMutation("join_group", "error")
		return nil, err
	}
	s.metrics.IncrMutation("join_group", "success")

	s.cache.Delete(cacheKey(ident.Token))
	s.resyncAndSelect(ctx, ident, result.GroupCode)
	return result, nil
}

// Select switches the caller's current group.
func (s *GroupService) Select(ctx context.Context, ident session.Identity, groupID string) (state.Snapshot, error) {
	ctx, span := groupTracer.Start(ctx, "GroupService.Select")
	defer span.End()

	if groupID == "" {
		return state.Snapshot{}, &domain.ErrValidation{Field: "groupId", Message: "groupId is required"}
	}
	return s.store.Select(ctx, ident, groupID)
}

// resyncAndSelect refreshes the snapshot after a membership mutation and
// switches to the named group. The mutation already succeeded upstream, so
// failures here are logged and counted, never returned.
func (s *GroupService) resyncAndSelect(ctx context.Context, ident session.Identity, code string) {
	if _, err := s.store.Refresh(ctx, ident); err != nil {
		s.metrics.IncrResync("failure")
		s.logger.Warn("resync after group mutation failed",
			zap.String("user_id", ident.UserID),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncrResync("success")

	if code == "" {
		return
	}
	if _, err := s.store.Select(ctx, ident, code); err != nil {
		s.logger.Warn("selecting group after mutation failed",
			zap.String("user_id", ident.UserID),
			zap.String("group_code", code),
			zap.Error(err),
		)
	}
}
