package service

import (
	"context"
	"time"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/session"
	"github.com/splitkaro/bff-go/internal/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var expenseTracer = otel.Tracer("service/expenses")

// ExpenseService forwards expense mutations upstream and resyncs the group
// snapshot afterwards. The server's answer is the snapshot; there is no
// optimistic local patch to roll back.
type ExpenseService struct {
	api     port.ExpenseAPI
	store   *state.Store
	cache   port.Cache[[]domain.Group]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewExpenseService creates the expense service.
func NewExpenseService(
	api port.ExpenseAPI,
	store *state.Store,
	cache port.Cache[[]domain.Group],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{api: api, store: store, cache: cache, metrics: metrics, logger: logger}
}

// Add validates and records an expense. When no group codes are given the
// expense goes to the caller's current group.
func (s *ExpenseService) Add(ctx context.Context, ident session.Identity, req domain.AddExpenseRequest) error {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Add")
	defer span.End()
	span.SetAttributes(attribute.Float64("expense.amount", req.Amount))

	if req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "amount must be greater than zero"}
	}
	if req.PaymentDate == "" {
		return &domain.ErrValidation{Field: "paymentDate", Message: "paymentDate is required"}
	}
	if _, err := time.Parse("2006-01-02", req.PaymentDate); err != nil {
		return &domain.ErrValidation{Field: "paymentDate", Message: "paymentDate must be formatted YYYY-MM-DD"}
	}

	if len(req.GroupCodes) == 0 {
		snap, ok := s.store.Snapshot(ident.UserID)
		if !ok || snap.Current == nil {
			return &domain.ErrValidation{Field: "groupCodes", Message: "no group selected"}
		}
		req.GroupCodes = []string{snap.Current.Code}
	}

	if err := s.api.AddExpense(ctx, ident.Token, req); err != nil {
		s.metrics.IncrMutation("add_expense", "error")
		return err
	}
	s.metrics.IncrMutation("add_expense", "success")

	s.resync(ctx, ident)
	return nil
}

// Delete removes an expense by id and resyncs.
func (s *ExpenseService) Delete(ctx context.Context, ident session.Identity, expenseID string) error {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if expenseID == "" {
		return &domain.ErrValidation{Field: "id", Message: "expense id is required"}
	}

	if err := s.api.DeleteExpense(ctx, ident.Token, expenseID); err != nil {
		s.metrics.IncrMutation("delete_expense", "error")
		return err
	}
	s.metrics.IncrMutation("delete_expense", "success")

	s.resync(ctx, ident)
	return nil
}

// resync refreshes the snapshot after a successful mutation. The mutation
// outcome stands either way; failures here only mark the snapshot stale.
func (s *ExpenseService) resync(ctx context.Context, ident session.Identity) {
	s.cache.Delete(cacheKey(ident.Token))

	if _, err := s.store.Refresh(ctx, ident); err != nil {
		s.metrics.IncrResync("failure")
		s.logger.Warn("resync after expense mutation failed",
			zap.String("user_id", ident.UserID),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncrResync("success")
}
