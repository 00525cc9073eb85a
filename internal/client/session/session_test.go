package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/repositories/storage"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/dbx"
	"github.com/dmitrijs2005/evote/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "evote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleSession() Session {
	return Session{User: testutil.Voter(), AccessToken: "acc-1", RefreshToken: "ref-1"}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	s := NewStore(db)
	require.NoError(t, s.Save(ctx, sampleSession()))
	require.True(t, s.IsAuthenticated())

	// a second store on the same file sees the persisted session
	restored := NewStore(db)
	require.False(t, restored.IsAuthenticated())
	require.NoError(t, restored.Load(ctx))

	got, ok := restored.Current()
	require.True(t, ok)
	if diff := cmp.Diff(sampleSession(), got); diff != "" {
		t.Fatalf("restored session mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, restored.IsAuthenticated())
}

func TestStore_Load_Empty(t *testing.T) {
	s := NewStore(newDB(t))
	require.NoError(t, s.Load(context.Background()))

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestStore_Load_CorruptUser(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	require.NoError(t, storage.NewSQLiteRepository(db).Set(ctx, common.StorageKeyUser, []byte("{not json")))

	err := NewStore(db).Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stored user is corrupt")
}

func TestStore_Load_TokenWithoutUserIsNotAuthenticated(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	require.NoError(t, storage.NewSQLiteRepository(db).Set(ctx, common.StorageKeyAccessToken, []byte("orphan")))

	s := NewStore(db)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, "orphan", s.AccessToken())
	assert.False(t, s.IsAuthenticated())
}

func TestStore_UpdateTokens(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := NewStore(db)
	require.NoError(t, s.Save(ctx, sampleSession()))

	// not rotated: refresh token is kept
	require.NoError(t, s.UpdateTokens(ctx, "acc-2", ""))
	assert.Equal(t, "acc-2", s.AccessToken())
	assert.Equal(t, "ref-1", s.RefreshToken())

	require.NoError(t, s.UpdateTokens(ctx, "acc-3", "ref-3"))

	restored := NewStore(db)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, "acc-3", restored.AccessToken())
	assert.Equal(t, "ref-3", restored.RefreshToken())
	assert.True(t, restored.IsAuthenticated())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := NewStore(db)
	require.NoError(t, s.Save(ctx, sampleSession()))

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.IsAuthenticated())

	repo := storage.NewSQLiteRepository(db)
	for _, key := range []string{common.StorageKeyUser, common.StorageKeyAccessToken, common.StorageKeyRefreshToken} {
		v, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, v, "%s is removed with the rest of the session", key)
	}
}

func TestStore_Save_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO storage").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO storage").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	s := NewStore(db)
	err = s.Save(context.Background(), sampleSession())
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "session saving error")
	assert.False(t, s.IsAuthenticated(), "memory is untouched when the write fails")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Clear_ForgetsSessionEvenOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db)
	s.current = &Session{User: testutil.Voter(), AccessToken: "a"}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM storage").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = s.Clear(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, s.IsAuthenticated())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenExpiry(t *testing.T) {
	tok, err := testutil.GenerateToken("42", "access", 0, []byte("k"), time.Hour)
	require.NoError(t, err)

	exp, ok := TokenExpiry(tok)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	// already expired tokens still report their expiry
	old, err := testutil.GenerateToken("42", "access", 0, []byte("k"), -time.Hour)
	require.NoError(t, err)
	exp, ok = TokenExpiry(old)
	require.True(t, ok)
	assert.True(t, exp.Before(time.Now()))

	_, ok = TokenExpiry("")
	assert.False(t, ok)
	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}

type brokenRepo struct{ err error }

func (r brokenRepo) Get(context.Context, string) ([]byte, error) { return nil, r.err }
func (r brokenRepo) Set(context.Context, string, []byte) error { return r.err }
func (r brokenRepo) Delete(context.Context, ...string) error { return r.err }

func TestStore_Load_StorageError(t *testing.T) {
	boom := errors.New("disk gone")
	s := NewStore(newDB(t))
	s.repo = func(dbx.DBTX) storage.Repository { return brokenRepo{err: boom} }

	require.ErrorIs(t, s.Load(context.Background()), boom)
	assert.False(t, s.IsAuthenticated())
}
