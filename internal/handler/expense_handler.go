package handler

import (
	"encoding/json"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Expenses
// ============================================================

func addExpenseHandler(expenseSvc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var req domain.AddExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := expenseSvc.Add(ctx, IdentityFromContext(ctx), req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func deleteExpenseHandler(expenseSvc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{id}")
		defer span.End()

		expenseID := chi.URLParam(r, "id")
		if err := expenseSvc.Delete(ctx, IdentityFromContext(ctx), expenseID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
