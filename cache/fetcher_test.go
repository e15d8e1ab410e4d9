package cache

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crdb/errors"
)

type countingFetcher struct {
	calls int
	lines []string
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string{url}, f.lines...), nil
}

func TestWrapMemoizes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	next := &countingFetcher{lines: []string{"row"}}
	f := Wrap(s, next)

	for range 3 {
		lines, err := f.Fetch(ctx, "http://x/a", time.Second)
		require.NoError(t, err)
		assert.Equal(t, []string{"http://x/a", "row"}, lines)
	}
	assert.Equal(t, 1, next.calls)

	_, err := f.Fetch(ctx, "http://x/b", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	// Kinds do not share entries.
	_, err = WrapKind(s, next, KindAll).Fetch(ctx, "http://x/a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestWrapRefetchesStale(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	next := &countingFetcher{}
	f := Wrap(s, next)

	_, err := f.Fetch(ctx, "u", 0)
	require.NoError(t, err)

	s.now = func() time.Time { return t0.Add(DefaultMaxAge + time.Second) }
	_, err = f.Fetch(ctx, "u", 0)
	require.NoError(t, err)
	_, err = f.Fetch(ctx, "u", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestWrapDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	next := &countingFetcher{err: errors.NewTimeoutError("u", 1)}
	f := Wrap(s, next)

	for range 2 {
		_, err := f.Fetch(ctx, "u", time.Second)
		require.Error(t, err)
		assert.True(t, errors.IsTimeout(err))
	}
	assert.Equal(t, 2, next.calls)

	_, err := s.Get(ctx, Key(KindFetch, "u"))
	assert.True(t, errors.IsNotFoundError(err))
}

func TestWrapSurvivesBrokenCache_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT body, fetched_at FROM responses`).WillReturnError(errors.New("corrupt"))
	mock.ExpectExec(`INSERT INTO responses`).WillReturnError(errors.New("readonly"))

	next := &countingFetcher{lines: []string{"row"}}
	lines, err := Wrap(New(db, 0, nil), next).Fetch(context.Background(), "u", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"u", "row"}, lines)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
