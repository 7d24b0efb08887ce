// Package memorystorage keeps the user directory in process memory.
// The table lives as long as the process does; nothing is written to disk.
package memorystorage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/userdir/internal/models"
)

// ErrUserExists is returned by InsertUser when the ID is already taken.
var ErrUserExists = errors.New("user with the same ID already exists")

// MemoryStorage is an ordered id -> user table guarded by a single mutex.
// Map keys always equal the ID of the stored user, and order lists every key
// exactly once in insertion order.
type MemoryStorage struct {
	mu    sync.Mutex
	users map[string]models.User
	order []string
}

// DefaultUsers returns the records the directory starts with.
func DefaultUsers() models.Users {
	return models.Users{
		{ID: "1234", Username: "Alice", Phone: "555-0101"},
		{ID: "5678", Username: "Bob", Phone: "555-0202"},
	}
}

// New creates a storage pre-filled with seed in the given order.
func New(seed ...models.User) (*MemoryStorage, error) {
	theStorage := &MemoryStorage{
		users: make(map[string]models.User, len(seed)),
		order: make([]string, 0, len(seed)),
	}

	for _, usr := range seed {
		if err := theStorage.insert(usr); err != nil {
			return nil, fmt.Errorf("in internal/db/memorystorage/memorystorage.go/New(): error while seeding user %q: %w", usr.ID, err)
		}
	}

	return theStorage, nil
}

func (theStorage *MemoryStorage) insert(usr models.User) error {
	if _, exists := theStorage.users[usr.ID]; exists {
		return ErrUserExists
	}
	theStorage.users[usr.ID] = usr
	theStorage.order = append(theStorage.order, usr.ID)

	return nil
}

// ListUsers returns a copy of all users in insertion order.
func (theStorage *MemoryStorage) ListUsers(ctx context.Context) (models.Users, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	result := make(models.Users, 0, len(theStorage.order))
	for _, userID := range theStorage.order {
		result = append(result, theStorage.users[userID])
	}

	return result, nil
}

// GetUserByID looks a user up without modifying the table.
func (theStorage *MemoryStorage) GetUserByID(ctx context.Context, userID string) (models.User, bool, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	usr, found := theStorage.users[userID]

	return usr, found, nil
}

// InsertUser appends usr to the table. The table is left untouched on ErrUserExists.
func (theStorage *MemoryStorage) InsertUser(ctx context.Context, usr models.User) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	return theStorage.insert(usr)
}

// UpdateUser overwrites the fields present in update and returns the merged record.
// found is false when there is no user with userID.
func (theStorage *MemoryStorage) UpdateUser(
	ctx context.Context,
	userID string,
	update models.UpdateUserRequest,
) (usr models.User, found bool, err error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	usr, found = theStorage.users[userID]
	if !found {
		return models.User{}, false, nil
	}

	if update.Username != nil {
		usr.Username = *update.Username
	}
	if update.Phone != nil {
		usr.Phone = *update.Phone
	}
	theStorage.users[userID] = usr

	return usr, true, nil
}

// DeleteUser removes the user and reports whether it existed.
func (theStorage *MemoryStorage) DeleteUser(ctx context.Context, userID string) (bool, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if _, found := theStorage.users[userID]; !found {
		return false, nil
	}

	delete(theStorage.users, userID)
	theStorage.order = funk.Filter(theStorage.order, func(id string) bool {
		return id != userID
	}).([]string)

	return true, nil
}

// GetNumberOfUsers returns the current table size.
func (theStorage *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	return int64(len(theStorage.users)), nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
