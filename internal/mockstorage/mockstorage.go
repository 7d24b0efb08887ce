// Package mockstorage provides a testify-based mock implementation
// of the storage interfaces used by the service package.
// It is used for unit testing the service and the HTTP handlers
// by simulating storage behavior, including failures the in-memory storage never produces.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/userdir/internal/models"
)

// StorageMock is a testify mock that implements all interfaces
// used by the service for storage operations.
type StorageMock struct {
	mock.Mock
}

// Ping mocks the pinger interface to simulate a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ListUsers mocks reading the whole user table.
func (m *StorageMock) ListUsers(ctx context.Context) (models.Users, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).(models.Users)
	return users, args.Error(1)
}

// InsertUser mocks storing a new user.
func (m *StorageMock) InsertUser(ctx context.Context, usr models.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// UpdateUser mocks merging an update into an existing user.
func (m *StorageMock) UpdateUser(
	ctx context.Context,
	userID string,
	update models.UpdateUserRequest,
) (models.User, bool, error) {
	args := m.Called(ctx, userID, update)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

// DeleteUser mocks removing a user.
func (m *StorageMock) DeleteUser(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
