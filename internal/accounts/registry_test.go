package accounts

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wkhart/workspace-mcp/internal/auth"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "accounts.json")
}

func TestRegistryBootstrapsEmpty(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	list, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddAndGet(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	acc, err := r.Add("Work@Example.com", "work", "Main work account")
	require.NoError(t, err)
	assert.Equal(t, "Work@Example.com", acc.Email)

	// lookup is case-insensitive
	got, err := r.Get("work@example.com")
	require.NoError(t, err)
	assert.Equal(t, "work", got.Category)
}

func TestAddDuplicate(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	_, err := r.Add("a@example.com", "work", "desc")
	require.NoError(t, err)

	_, err = r.Add("A@Example.com", "personal", "other")
	require.Error(t, err)
	assert.Equal(t, auth.KindDuplicateAccount, auth.KindOf(err))
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	_, err := r.Get("nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, auth.KindAccountNotFound, auth.KindOf(err))
}

func TestValidateCreatesWhenFullySpecified(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	acc, err := r.Validate("a@example.com", "work", "desc")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", acc.Email)

	// second call finds the existing account without touching it
	again, err := r.Validate("a@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "work", again.Category)
}

func TestValidateNeverHalfCreates(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	_, err := r.Validate("a@example.com", "work", "")
	require.Error(t, err)
	assert.Equal(t, auth.KindAccountNotFound, auth.KindOf(err))

	list, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := testPath(t)

	r1 := NewRegistry(path, nil)
	_, err := r1.Add("a@example.com", "work", "desc")
	require.NoError(t, err)

	r2 := NewRegistry(path, nil)
	got, err := r2.Get("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "desc", got.Description)
}

func TestCorruptFileSurfacesStorageError(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0600))

	r := NewRegistry(path, nil)
	_, err := r.List()
	require.Error(t, err)
	assert.Equal(t, auth.KindStorageUnavailable, auth.KindOf(err))
}

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (d *recordingDeleter) DeleteToken(ctx context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, email)
	return nil
}

func TestRemoveDeletesTokenFirst(t *testing.T) {
	deleter := &recordingDeleter{}
	r := NewRegistry(testPath(t), deleter)

	_, err := r.Add("a@example.com", "work", "desc")
	require.NoError(t, err)

	require.NoError(t, r.Remove(context.Background(), "a@example.com"))
	assert.Equal(t, []string{"a@example.com"}, deleter.deleted)

	_, err = r.Get("a@example.com")
	assert.Equal(t, auth.KindAccountNotFound, auth.KindOf(err))
}

func TestRemoveKeepsAccountWhenTokenDeleteFails(t *testing.T) {
	deleter := &recordingDeleter{err: auth.ErrStorageUnavailable("delete", os.ErrPermission)}
	r := NewRegistry(testPath(t), deleter)

	_, err := r.Add("a@example.com", "work", "desc")
	require.NoError(t, err)

	err = r.Remove(context.Background(), "a@example.com")
	require.Error(t, err)

	// account survives: never leave an account with a dangling token
	_, err = r.Get("a@example.com")
	assert.NoError(t, err)
}

func TestRemoveTwiceIsIdempotent(t *testing.T) {
	r := NewRegistry(testPath(t), nil)

	_, err := r.Add("a@example.com", "work", "desc")
	require.NoError(t, err)

	require.NoError(t, r.Remove(context.Background(), "a@example.com"))
	require.NoError(t, r.Remove(context.Background(), "a@example.com"))
}

func TestRemoveUnknownDeletesOrphanedToken(t *testing.T) {
	deleter := &recordingDeleter{}
	r := NewRegistry(testPath(t), deleter)

	// a no-op on the account list, but any credential record left behind
	// by a partially failed earlier removal is cleaned up
	require.NoError(t, r.Remove(context.Background(), "nobody@example.com"))
	assert.Equal(t, []string{"nobody@example.com"}, deleter.deleted)
}
