package credential

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewStore(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStore_ActiveEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Active(context.Background(), ServiceGoogleDrive)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestStore_SaveAndActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	id, err := s.Save(ctx, &Record{
		Service:      ServiceGoogleDrive,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expiry,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	rec, err := s.Active(ctx, ServiceGoogleDrive)
	require.NoError(t, err)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "access-1", rec.AccessToken)
	assert.Equal(t, "refresh-1", rec.RefreshToken)
	assert.True(t, rec.ExpiresAt.Equal(expiry))
	assert.True(t, rec.Active)
}

func TestStore_SaveDeactivatesPrior(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, &Record{Service: ServiceGoogleDrive, RefreshToken: "refresh-1"})
	require.NoError(t, err)

	second, err := s.Save(ctx, &Record{Service: ServiceGoogleDrive, RefreshToken: "refresh-2"})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	rec, err := s.Active(ctx, ServiceGoogleDrive)
	require.NoError(t, err)
	assert.Equal(t, second, rec.ID)
	assert.Equal(t, "refresh-2", rec.RefreshToken)
}

func TestStore_UpdateAccessToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, &Record{Service: ServiceGoogleDrive, RefreshToken: "refresh-1"})
	require.NoError(t, err)

	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, s.UpdateAccessToken(ctx, id, "access-2", expiry))

	rec, err := s.Active(ctx, ServiceGoogleDrive)
	require.NoError(t, err)
	assert.Equal(t, "access-2", rec.AccessToken)
	assert.True(t, rec.ExpiresAt.Equal(expiry))
}

func TestStore_Deactivate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, &Record{Service: ServiceGoogleDrive, RefreshToken: "refresh-1"})
	require.NoError(t, err)

	require.NoError(t, s.Deactivate(ctx, id))

	_, err = s.Active(ctx, ServiceGoogleDrive)
	assert.ErrorIs(t, err, ErrNoCredential)
}
