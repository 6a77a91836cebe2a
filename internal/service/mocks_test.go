package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/splitkaro/bff-go/internal/domain"
)

type mockAuthAPI struct {
	loginToken  string
	loginErr    error
	registerErr error
	registered  []domain.RegisterRequest
}

func (m *mockAuthAPI) Login(ctx context.Context, userID, password string) (*domain.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &domain.LoginResponse{Token: m.loginToken}, nil
}

func (m *mockAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	m.registered = append(m.registered, req)
	return &domain.RegisterResponse{UserID: req.UserID}, nil
}

type mockGroupAPI struct {
	mu         sync.Mutex
	groups     []domain.Group
	listErr    error
	listCalls  int
	createErr  error
	joinErr    error
	created    []domain.CreateGroupRequest
	joined     []domain.JoinGroupRequest
}

func (m *mockGroupAPI) MyGroups(ctx context.Context, bearer string) ([]domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.groups, nil
}

func (m *mockGroupAPI) MyGroup(ctx context.Context, bearer string) (*domain.Group, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGroupAPI) CreateGroup(ctx context.Context, bearer string, req domain.CreateGroupRequest) (*domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	g := domain.Group{Code: "new-code", Name: req.GroupName}
	m.groups = append(m.groups, g)
	return &g, nil
}

func (m *mockGroupAPI) JoinGroup(ctx context.Context, bearer string, req domain.JoinGroupRequest) (*domain.JoinGroupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	m.joined = append(m.joined, req)
	m.groups = append(m.groups, domain.Group{Code: req.GroupCode, Name: "Joined"})
	return &domain.JoinGroupResult{GroupCode: req.GroupCode, GroupName: "Joined"}, nil
}

type mockExpenseAPI struct {
	mu        sync.Mutex
	addErr    error
	deleteErr error
	added     []domain.AddExpenseRequest
	deleted   []string
}

func (m *mockExpenseAPI) AddExpense(ctx context.Context, bearer string, req domain.AddExpenseRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, req)
	return nil
}

func (m *mockExpenseAPI) DeleteExpense(ctx context.Context, bearer, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, expenseID)
	return nil
}

type mockDeviceAPI struct {
	err      error
	received []domain.DeviceRegistration
}

func (m *mockDeviceAPI) RegisterDevice(ctx context.Context, bearer string, reg domain.DeviceRegistration) error {
	if m.err != nil {
		return m.err
	}
	m.received = append(m.received, reg)
	return nil
}

type mockPrefs struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMockPrefs() *mockPrefs {
	return &mockPrefs{values: make(map[string]string)}
}

func (m *mockPrefs) Get(ctx context.Context, userID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[userID+"/"+key]
	return v, ok, nil
}

func (m *mockPrefs) Set(ctx context.Context, userID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[userID+"/"+key] = value
	return nil
}

func (m *mockPrefs) Delete(ctx context.Context, userID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, userID+"/"+key)
	return nil
}
