package service

import (
	"context"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/prefs"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/session"
	"github.com/splitkaro/bff-go/internal/state"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var deviceTracer = otel.Tracer("service/devices")

// DeviceService registers push tokens with the upstream API. Registration is
// best-effort: notifications are a convenience, so upstream failures are
// recorded and absorbed rather than bubbled to the caller.
type DeviceService struct {
	api    port.DeviceAPI
	store  *state.Store
	prefs  port.Prefs
	logger *zap.Logger
}

// NewDeviceService creates the device service.
func NewDeviceService(api port.DeviceAPI, store *state.Store, prefStore port.Prefs, logger *zap.Logger) *DeviceService {
	return &DeviceService{api: api, store: store, prefs: prefStore, logger: logger}
}

// Register associates a push token with the caller's groups. Repeat calls
// with an already-registered device are no-ops.
func (s *DeviceService) Register(ctx context.Context, ident session.Identity, reg domain.DeviceRegistration) error {
	ctx, span := deviceTracer.Start(ctx, "DeviceService.Register")
	defer span.End()

	if reg.PushToken == "" {
		return &domain.ErrValidation{Field: "token", Message: "push token is required"}
	}
	reg.UserID = ident.UserID

	if done, ok, _ := s.prefs.Get(ctx, ident.UserID, prefs.KeyDeviceRegistered); ok && done == "true" {
		return nil
	}

	// Asking for the token implies the permission prompt was shown.
	if err := s.prefs.Set(ctx, ident.UserID, prefs.KeyNotifyPermission, "true"); err != nil {
		s.logger.Warn("recording notification prompt failed",
			zap.String("user_id", ident.UserID), zap.Error(err))
	}

	if len(reg.GroupCodes) == 0 {
		if snap, ok := s.store.Snapshot(ident.UserID); ok {
			for _, g := range snap.Groups {
				reg.GroupCodes = append(reg.GroupCodes, g.Code)
			}
		}
	}

	if err := s.api.RegisterDevice(ctx, ident.Token, reg); err != nil {
		s.logger.Warn("device registration failed upstream",
			zap.String("user_id", ident.UserID), zap.Error(err))
		return nil
	}

	if err := s.prefs.Set(ctx, ident.UserID, prefs.KeyDeviceRegistered, "true"); err != nil {
		s.logger.Warn("persisting device registration flag failed",
			zap.String("user_id", ident.UserID), zap.Error(err))
	}
	return nil
}
