package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/service"
	"github.com/splitkaro/bff-go/internal/state"

	"go.uber.org/zap"
)

// bearerFor builds a structurally valid unsigned JWT whose subject is userID.
func bearerFor(userID string) string {
	enc := base64.RawURLEncoding.EncodeToString
	header := enc([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := enc([]byte(`{"sub":"` + userID + `"}`))
	return header + "." + payload + ".sig"
}

func newAuthService(api *mockAuthAPI, groups *mockGroupAPI) *service.AuthService {
	store := state.NewStore(groups, newMockPrefs(), zap.NewNop())
	return service.NewAuthService(api, store, zap.NewNop())
}

func TestLogin_RequiresCredentials(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{}, &mockGroupAPI{})

	cases := []domain.LoginRequest{
		{Password: "secret"},
		{UserID: "u1"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), &req)
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestLogin_DecodesIdentityFromToken(t *testing.T) {
	api := &mockAuthAPI{loginToken: bearerFor("42")}
	svc := newAuthService(api, &mockGroupAPI{})

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{UserID: "asha", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserID != "42" {
		t.Errorf("expected subject from token, got %q", resp.UserID)
	}
	if resp.Token != api.loginToken {
		t.Errorf("expected token passed through")
	}
}

func TestLogin_UnreadableTokenFallsBackToLoginName(t *testing.T) {
	api := &mockAuthAPI{loginToken: "opaque-token"}
	svc := newAuthService(api, &mockGroupAPI{})

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{UserID: "asha", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserID != "asha" {
		t.Errorf("expected login name fallback, got %q", resp.UserID)
	}
}

func TestLogin_SnapshotWarmupFailureDoesNotFailLogin(t *testing.T) {
	api := &mockAuthAPI{loginToken: bearerFor("42")}
	groups := &mockGroupAPI{listErr: errors.New("upstream down")}
	svc := newAuthService(api, groups)

	if _, err := svc.Login(context.Background(), &domain.LoginRequest{UserID: "asha", Password: "secret"}); err != nil {
		t.Fatalf("login must not fail on warm-up error, got %v", err)
	}
}

func TestLogin_PassesThroughUnauthorized(t *testing.T) {
	api := &mockAuthAPI{loginErr: &domain.ErrUnauthorized{Message: "invalid credentials"}}
	svc := newAuthService(api, &mockGroupAPI{})

	_, err := svc.Login(context.Background(), &domain.LoginRequest{UserID: "asha", Password: "bad"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(&mockAuthAPI{}, &mockGroupAPI{})

	cases := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{"missing name", domain.RegisterRequest{UserID: "u1", Password: "secret1", ConfirmPassword: "secret1"}},
		{"missing userId", domain.RegisterRequest{Name: "Asha", Password: "secret1", ConfirmPassword: "secret1"}},
		{"missing password", domain.RegisterRequest{Name: "Asha", UserID: "u1"}},
		{"short password", domain.RegisterRequest{Name: "Asha", UserID: "u1", Password: "abc", ConfirmPassword: "abc"}},
		{"mismatch", domain.RegisterRequest{Name: "Asha", UserID: "u1", Password: "secret1", ConfirmPassword: "secret2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tc.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_ValidatesBeforeNetwork(t *testing.T) {
	api := &mockAuthAPI{registerErr: errors.New("must not be called")}
	svc := newAuthService(api, &mockGroupAPI{})

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Asha", UserID: "u1", Password: "short", ConfirmPassword: "short",
	})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected local validation error, got %v", err)
	}
}

func TestRegister_Succeeds(t *testing.T) {
	api := &mockAuthAPI{}
	svc := newAuthService(api, &mockGroupAPI{})

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Asha", UserID: "u1", Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserID != "u1" {
		t.Errorf("expected userId u1, got %q", resp.UserID)
	}
	if len(api.registered) != 1 {
		t.Fatalf("expected one upstream registration, got %d", len(api.registered))
	}
}
