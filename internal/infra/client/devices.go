package client

import (
	"context"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// RegisterDevice associates a push token with the caller's groups so the
// server can notify other members about new expenses.
func (c *Client) RegisterDevice(ctx context.Context, bearer string, reg domain.DeviceRegistration) error {
	ctx, span := tracer.Start(ctx, "Client.RegisterDevice")
	defer span.End()
	span.SetAttributes(attribute.Int("device.groups", len(reg.GroupCodes)))

	_, err := c.send(ctx, http.MethodPost, "/pg/register-device", bearer, map[string]any{
		"userId":     reg.UserID,
		"token":      reg.PushToken,
		"groupCodes": reg.GroupCodes,
	})
	return err
}
