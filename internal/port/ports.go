// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/splitkaro/bff-go/internal/domain"
)

// AuthAPI exchanges credentials with the upstream expense API.
type AuthAPI interface {
	Login(ctx context.Context, userID, password string) (*domain.LoginResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error)
}

// GroupAPI reads and mutates group membership upstream. All calls carry the
// caller's bearer token.
type GroupAPI interface {
	MyGroups(ctx context.Context, bearer string) ([]domain.Group, error)
	MyGroup(ctx context.Context, bearer string) (*domain.Group, error)
	CreateGroup(ctx context.Context, bearer string, req domain.CreateGroupRequest) (*domain.Group, error)
	JoinGroup(ctx context.Context, bearer string, req domain.JoinGroupRequest) (*domain.JoinGroupResult, error)
}

// ExpenseAPI mutates expenses upstream.
type ExpenseAPI interface {
	AddExpense(ctx context.Context, bearer string, req domain.AddExpenseRequest) error
	DeleteExpense(ctx context.Context, bearer, expenseID string) error
}

// DeviceAPI registers push notification tokens upstream.
type DeviceAPI interface {
	RegisterDevice(ctx context.Context, bearer string, reg domain.DeviceRegistration) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}

// Prefs persists small per-user preferences across restarts.
type Prefs interface {
	Get(ctx context.Context, userID, key string) (string, bool, error)
	Set(ctx context.Context, userID, key, value string) error
	Delete(ctx context.Context, userID, key string) error
}
