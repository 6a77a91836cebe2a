package handler

import (
	"encoding/json"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Devices (push notifications)
// ============================================================

func registerDeviceHandler(deviceSvc *service.DeviceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/devices")
		defer span.End()

		var reg domain.DeviceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := deviceSvc.Register(ctx, IdentityFromContext(ctx), reg); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
