package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/model"
)

type MockCartAPI struct {
	mock.Mock
}

func (m *MockCartAPI) Lines(ctx context.Context, userID string) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	if lines := args.Get(0); lines != nil {
		return lines.([]model.CartLine), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartAPI) Insert(ctx context.Context, userID, code string, qty int) error {
	args := m.Called(ctx, userID, code, qty)
	return args.Error(0)
}

func (m *MockCartAPI) Remove(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockCartAPI) ItemCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCartAPI) TotalDue(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactionAPI struct {
	mock.Mock
}

func (m *MockTransactionAPI) Commit(ctx context.Context, req model.CommitRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockSalesAPI struct {
	mock.Mock
}

func (m *MockSalesAPI) Report(ctx context.Context, start, end time.Time) ([]model.ReportRecord, error) {
	args := m.Called(ctx, start, end)
	if records := args.Get(0); records != nil {
		return records.([]model.ReportRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSalesAPI) ReportPDF(ctx context.Context, start, end time.Time) ([]byte, error) {
	args := m.Called(ctx, start, end)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*api.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req api.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
