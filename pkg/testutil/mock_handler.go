// Package testutil provides shared test doubles.
package testutil

import (
	"context"

	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/stretchr/testify/mock"
)

// MockHandler implements platform.Handler for tests.
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) VerifyApplication(ctx context.Context, path string) (types.AppInfo, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(types.AppInfo), args.Error(1)
}

func (m *MockHandler) GetCurrentDefault(ctx context.Context, ext string) (string, error) {
	args := m.Called(ctx, ext)
	return args.String(0), args.Error(1)
}

func (m *MockHandler) SetDefault(ctx context.Context, ext, appPath string, dryRun bool) (types.OperationResult, error) {
	args := m.Called(ctx, ext, appPath, dryRun)
	return args.Get(0).(types.OperationResult), args.Error(1)
}

func (m *MockHandler) RemoveDefault(ctx context.Context, ext string, dryRun bool) (types.OperationResult, error) {
	args := m.Called(ctx, ext, dryRun)
	return args.Get(0).(types.OperationResult), args.Error(1)
}

func (m *MockHandler) RestoreDefault(ctx context.Context, ext, previous string) error {
	args := m.Called(ctx, ext, previous)
	return args.Error(0)
}
