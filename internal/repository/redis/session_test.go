package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

const testUserID = "2a9f1bfb-14d9-4cde-9549-8d20e2ba9741"

func setupSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewSessionStore(client, 10*time.Minute)
	return store, mr
}

func TestSessionStore_PutGet_RoundTrip(t *testing.T) {
	store, _ := setupSessionStore(t)

	session, err := domain.NewTagSelectedSession(testUserID, "minimal")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), &session))

	got, err := store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepTagSelected, got.Step)
	assert.Equal(t, "minimal", got.SelectedTag)
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store, _ := setupSessionStore(t)

	got, err := store.Get(context.Background(), testUserID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_Get_Expired(t *testing.T) {
	store, mr := setupSessionStore(t)

	session := domain.NewGreetingSession(testUserID)
	require.NoError(t, store.Put(context.Background(), &session))

	// Past the TTL the entry is gone and the conversation restarts.
	mr.FastForward(11 * time.Minute)

	got, err := store.Get(context.Background(), testUserID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_Get_CorruptedEntry(t *testing.T) {
	store, mr := setupSessionStore(t)

	// An inconsistent step/tag combination is treated as absent.
	data, err := json.Marshal(domain.Session{UserID: testUserID, Step: domain.StepTagSelected})
	require.NoError(t, err)
	require.NoError(t, mr.Set(sessionKeyPrefix+testUserID, string(data)))

	got, err := store.Get(context.Background(), testUserID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_Put_RefreshesTTL(t *testing.T) {
	store, mr := setupSessionStore(t)

	session := domain.NewGreetingSession(testUserID)
	require.NoError(t, store.Put(context.Background(), &session))

	mr.FastForward(9 * time.Minute)
	require.NoError(t, store.Put(context.Background(), &session))
	mr.FastForward(9 * time.Minute)

	// 18 minutes after the first Put the session is still there because
	// the second Put reset the clock.
	got, err := store.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepGreeting, got.Step)
}

func TestSessionStore_Delete_Idempotent(t *testing.T) {
	store, _ := setupSessionStore(t)

	session := domain.NewGreetingSession(testUserID)
	require.NoError(t, store.Put(context.Background(), &session))

	require.NoError(t, store.Delete(context.Background(), testUserID))
	require.NoError(t, store.Delete(context.Background(), testUserID))

	_, err := store.Get(context.Background(), testUserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
