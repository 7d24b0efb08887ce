package memorystorage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userdir/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New(DefaultUsers()...)
		require.NoError(t, err, "The memorystorage.New() should not return error")

		users, err := theStorage.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultUsers(), users, "The seeded users should be listed in the seed order")

		err = theStorage.InsertUser(context.Background(), models.User{ID: "abcd", Username: "Carol", Phone: "555-0303"})
		assert.NoError(t, err, "The `theStorage.InsertUser()` should not return error")

		usr, found, err := theStorage.GetUserByID(context.Background(), "abcd")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Carol", usr.Username, "Should be equal to `Carol`")

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}

func TestNewRejectsDuplicateSeed(t *testing.T) {
	_, err := New(
		models.User{ID: "1", Username: "a", Phone: "1"},
		models.User{ID: "1", Username: "b", Phone: "2"},
	)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestInsertUserKeepsOrderAndRejectsDuplicates(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	ctx := context.Background()

	users, err := theStorage.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, theStorage.InsertUser(ctx, models.User{ID: id, Username: id, Phone: id}))
	}

	err = theStorage.InsertUser(ctx, models.User{ID: "a", Username: "other", Phone: "other"})
	assert.ErrorIs(t, err, ErrUserExists)

	users, err = theStorage.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "z", users[0].ID)
	assert.Equal(t, "a", users[1].ID)
	assert.Equal(t, "a", users[1].Username, "The rejected insert must not overwrite the existing user")
	assert.Equal(t, "m", users[2].ID)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		update   models.UpdateUserRequest
		found    bool
		expected models.User
	}{
		{
			name:     "phone only",
			userID:   "1234",
			update:   models.UpdateUserRequest{Phone: strPtr("555-9999")},
			found:    true,
			expected: models.User{ID: "1234", Username: "Alice", Phone: "555-9999"},
		},
		{
			name:     "username only",
			userID:   "5678",
			update:   models.UpdateUserRequest{Username: strPtr("Robert")},
			found:    true,
			expected: models.User{ID: "5678", Username: "Robert", Phone: "555-0202"},
		},
		{
			name:     "both fields",
			userID:   "1234",
			update:   models.UpdateUserRequest{Username: strPtr("Al"), Phone: strPtr("")},
			found:    true,
			expected: models.User{ID: "1234", Username: "Al", Phone: ""},
		},
		{
			name:     "empty update",
			userID:   "1234",
			update:   models.UpdateUserRequest{},
			found:    true,
			expected: models.User{ID: "1234", Username: "Alice", Phone: "555-0101"},
		},
		{
			name:   "unknown user",
			userID: "nope",
			update: models.UpdateUserRequest{Username: strPtr("x")},
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theStorage, err := New(DefaultUsers()...)
			require.NoError(t, err)

			usr, found, err := theStorage.UpdateUser(ctx, tt.userID, tt.update)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)

			if !tt.found {
				users, err := theStorage.ListUsers(ctx)
				require.NoError(t, err)
				assert.Equal(t, DefaultUsers(), users, "The table should stay unchanged")
				return
			}

			assert.Equal(t, tt.expected, usr)
			stored, _, err := theStorage.GetUserByID(ctx, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored)
		})
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New(DefaultUsers()...)
	require.NoError(t, err)

	deleted, err := theStorage.DeleteUser(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = theStorage.DeleteUser(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, deleted, "The second delete of the same ID should report a missing user")

	users, err := theStorage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Users{{ID: "5678", Username: "Bob", Phone: "555-0202"}}, users)

	count, err := theStorage.GetNumberOfUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	deleted, err = theStorage.DeleteUser(ctx, "5678")
	require.NoError(t, err)
	assert.True(t, deleted)

	users, err = theStorage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	theStorage, err := New()
	require.NoError(t, err)

	const workers = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			assert.NoError(t, theStorage.InsertUser(ctx, models.User{ID: id, Username: id, Phone: id}))
		}(i)
	}
	wg.Wait()

	users, err := theStorage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, workers)

	seen := map[string]bool{}
	for _, usr := range users {
		assert.False(t, seen[usr.ID], "IDs in the listing must be unique")
		seen[usr.ID] = true
	}
}
