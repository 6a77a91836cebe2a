package handler

import (
	"encoding/json"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Groups
// ============================================================

func listGroupsHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/groups")
		defer span.End()

		groups, err := groupSvc.List(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if groups == nil {
			groups = []domain.Group{}
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func currentGroupHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/group")
		defer span.End()

		snap, err := groupSvc.Current(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func monthlySummaryHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/group/summary")
		defer span.End()

		month := r.URL.Query().Get("month")
		summary, err := groupSvc.MonthlySummary(ctx, IdentityFromContext(ctx), month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func createGroupHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/groups")
		defer span.End()

		var req domain.CreateGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		group, err := groupSvc.Create(ctx, IdentityFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, group)
	}
}

func joinGroupHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/groups/join")
		defer span.End()

		var req domain.JoinGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := groupSvc.Join(ctx, IdentityFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func selectGroupHandler(groupSvc *service.GroupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/group/select")
		defer span.End()

		var req domain.SelectGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		snap, err := groupSvc.Select(ctx, IdentityFromContext(ctx), req.GroupID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
