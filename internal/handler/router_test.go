package handler_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/handler"
	"github.com/splitkaro/bff-go/internal/infra/cache"
	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/service"
	"github.com/splitkaro/bff-go/internal/state"

	"go.uber.org/zap"
)

type stubAPI struct {
	groups []domain.Group
}

func (s *stubAPI) Login(ctx context.Context, userID, password string) (*domain.LoginResponse, error) {
	if password != "secret1" {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	return &domain.LoginResponse{Token: bearerFor(userID)}, nil
}

func (s *stubAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	return &domain.RegisterResponse{UserID: req.UserID}, nil
}

func (s *stubAPI) MyGroups(ctx context.Context, bearer string) ([]domain.Group, error) {
	return s.groups, nil
}

func (s *stubAPI) MyGroup(ctx context.Context, bearer string) (*domain.Group, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAPI) CreateGroup(ctx context.Context, bearer string, req domain.CreateGroupRequest) (*domain.Group, error) {
	g := domain.Group{Code: "new", Name: req.GroupName}
	s.groups = append(s.groups, g)
	return &g, nil
}

func (s *stubAPI) JoinGroup(ctx context.Context, bearer string, req domain.JoinGroupRequest) (*domain.JoinGroupResult, error) {
	return &domain.JoinGroupResult{GroupCode: req.GroupCode}, nil
}

func (s *stubAPI) AddExpense(ctx context.Context, bearer string, req domain.AddExpenseRequest) error {
	return nil
}

func (s *stubAPI) DeleteExpense(ctx context.Context, bearer, expenseID string) error {
	return nil
}

func (s *stubAPI) RegisterDevice(ctx context.Context, bearer string, reg domain.DeviceRegistration) error {
	return nil
}

type stubPrefs struct{ values map[string]string }

func (p *stubPrefs) Get(ctx context.Context, userID, key string) (string, bool, error) {
	v, ok := p.values[userID+"/"+key]
	return v, ok, nil
}

func (p *stubPrefs) Set(ctx context.Context, userID, key, value string) error {
	p.values[userID+"/"+key] = value
	return nil
}

func (p *stubPrefs) Delete(ctx context.Context, userID, key string) error {
	delete(p.values, userID+"/"+key)
	return nil
}

func bearerFor(userID string) string {
	enc := base64.RawURLEncoding.EncodeToString
	header := enc([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := enc([]byte(`{"sub":"` + userID + `"}`))
	return header + "." + payload + ".sig"
}

func newRouter(api *stubAPI) http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	p := &stubPrefs{values: make(map[string]string)}
	store := state.NewStore(api, p, logger)
	groupCache := cache.New[[]domain.Group](time.Minute)

	svcs := handler.Services{
		Auth:     service.NewAuthService(api, store, logger),
		Groups:   service.NewGroupService(api, store, groupCache, metrics, logger),
		Expenses: service.NewExpenseService(api, store, groupCache, metrics, logger),
		Devices:  service.NewDeviceService(api, store, p, logger),
		Prefs:    p,
	}
	return handler.NewRouter(svcs, metrics, logger, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodGet, "/v1/metrics/summary", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "totalRequests") {
		t.Errorf("expected snapshot body, got %s", rec.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodPost, "/v1/auth/login", "",
		`{"userId":"asha","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"userId":"asha"`) {
		t.Errorf("expected decoded identity in body, got %s", rec.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodPost, "/v1/auth/login", "",
		`{"userId":"asha","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodPost, "/v1/auth/login", "",
		`{"userId":"asha"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodPost, "/v1/auth/register", "",
		`{"name":"Asha","userId":"asha","password":"secret1","confirmPassword":"secret2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGroups_RequireBearer(t *testing.T) {
	rec := do(t, newRouter(&stubAPI{}), http.MethodGet, "/v1/groups", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without bearer, got %d", rec.Code)
	}
}

func TestGroups_List(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1", Name: "Flat"}}}
	rec := do(t, newRouter(api), http.MethodGet, "/v1/groups", bearerFor("u1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"groupCode":"g-1"`) {
		t.Errorf("expected normalized group in body, got %s", rec.Body.String())
	}
}

func TestCurrentGroup(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1", Name: "Flat"}}}
	rec := do(t, newRouter(api), http.MethodGet, "/v1/group", bearerFor("u1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"phase":"active"`) {
		t.Errorf("expected active snapshot, got %s", rec.Body.String())
	}
}

func TestMonthlySummary_BadMonth(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1"}}}
	rec := do(t, newRouter(api), http.MethodGet, "/v1/group/summary?month=nope", bearerFor("u1"), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAddExpense(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1", Name: "Flat"}}}
	router := newRouter(api)

	rec := do(t, router, http.MethodPost, "/v1/expenses", bearerFor("u1"),
		`{"amount":12.5,"paymentDate":"2025-08-02","groupCodes":["g-1"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddExpense_Invalid(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1"}}}
	rec := do(t, newRouter(api), http.MethodPost, "/v1/expenses", bearerFor("u1"),
		`{"amount":0,"paymentDate":"2025-08-02","groupCodes":["g-1"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1"}}}
	rec := do(t, newRouter(api), http.MethodDelete, "/v1/expenses/e-1", bearerFor("u1"), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestRegisterDevice(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1"}}}
	rec := do(t, newRouter(api), http.MethodPost, "/v1/devices", bearerFor("u1"),
		`{"token":"push-1"}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	api := &stubAPI{groups: []domain.Group{{Code: "g-1"}}}
	rec := do(t, newRouter(api), http.MethodPost, "/v1/auth/logout", bearerFor("u1"), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
