package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
)

// Login exchanges credentials for a bearer token. Failed credentials surface
// as ErrUnauthorized with a generic message regardless of upstream wording.
func (c *Client) Login(ctx context.Context, userID, password string) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	body, err := c.send(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"userId":   userID,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		token = gjson.GetBytes(body, "accessToken").String()
	}
	if token == "" {
		return nil, wrap(&domain.ErrUnauthorized{Message: "invalid credentials"})
	}
	return &domain.LoginResponse{Token: token}, nil
}

// Register creates an account. Duplicate users come back as ErrConflict with
// the upstream message preserved.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	body, err := c.send(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     req.Name,
		"userId":   req.UserID,
		"password": req.Password,
	})
	if err != nil {
		return nil, err
	}

	var resp domain.RegisterResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.UserID == "" {
		resp.UserID = req.UserID
	}
	return &resp, nil
}
