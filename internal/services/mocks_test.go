package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCompiler is a mock implementation of typst.Compiler
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Compile(ctx context.Context, templatePath string, sysInputs map[string]string) ([]byte, error) {
	args := m.Called(ctx, templatePath, sysInputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
