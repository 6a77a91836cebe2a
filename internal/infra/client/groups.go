package client

import (
	"context"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// MyGroups fetches every group the caller belongs to. The endpoint sometimes
// answers with a single object instead of an array; both decode to a slice.
func (c *Client) MyGroups(ctx context.Context, bearer string) ([]domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Client.MyGroups")
	defer span.End()

	body, err := c.get(ctx, "/pg/my-groups", bearer)
	if err != nil {
		return nil, err
	}

	groups := parseGroups(body)
	span.SetAttributes(attribute.Int("groups.count", len(groups)))
	return groups, nil
}

// MyGroup fetches the caller's group from the legacy single-group endpoint.
// Kept for servers that predate multi-group membership.
func (c *Client) MyGroup(ctx context.Context, bearer string) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Client.MyGroup")
	defer span.End()

	body, err := c.get(ctx, "/pg/my-group", bearer)
	if err != nil {
		return nil, err
	}

	groups := parseGroups(body)
	if len(groups) == 0 {
		return nil, wrap(&domain.ErrNotFound{Resource: "group", ID: "my-group"})
	}
	return &groups[0], nil
}

// CreateGroup creates a group owned by the caller.
func (c *Client) CreateGroup(ctx context.Context, bearer string, req domain.CreateGroupRequest) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Client.CreateGroup")
	defer span.End()
	span.SetAttributes(attribute.String("group.name", req.GroupName))

	body, err := c.send(ctx, http.MethodPost, "/pg/create-group", bearer, map[string]string{
		"groupName": req.GroupName,
	})
	if err != nil {
		return nil, err
	}

	g := groupFromJSONBytes(body)
	return &g, nil
}

// JoinGroup adds the caller to an existing group by its code. Already being a
// member is a conflict, surfaced verbatim.
func (c *Client) JoinGroup(ctx context.Context, bearer string, req domain.JoinGroupRequest) (*domain.JoinGroupResult, error) {
	ctx, span := tracer.Start(ctx, "Client.JoinGroup")
	defer span.End()
	span.SetAttributes(attribute.String("group.code", req.GroupCode))

	body, err := c.send(ctx, http.MethodPost, "/pg/join-group", bearer, map[string]string{
		"groupCode": req.GroupCode,
	})
	if err != nil {
		return nil, err
	}

	g := groupFromJSONBytes(body)
	if g.Code == "" {
		g.Code = req.GroupCode
	}
	return &domain.JoinGroupResult{GroupName: g.Name, GroupCode: g.Code}, nil
}
