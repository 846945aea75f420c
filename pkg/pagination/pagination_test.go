package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, empty)

	_, err = ParseCursor("%%%")
	require.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestPaginate(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	cursorOf := func(i int) Cursor {
		return Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Hour), ID: ids[i]}
	}

	page := Paginate([]int{0, 1, 2}, 2, cursorOf)
	require.Equal(t, []int{0, 1}, page.Items)
	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, ids[1], next.ID)

	last := Paginate([]int{0, 1}, 2, cursorOf)
	require.Empty(t, last.NextCursor)
}

func TestParseCursorRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"bad", "bm90LWEtY3Vyc29y", EncodeCursor(Cursor{})[:4]} {
		_, err := ParseCursor(raw)
		require.ErrorIs(t, err, ErrInvalidCursor, raw)
	}
}

func TestKeysetUsesUTC(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	id := uuid.New()
	clause, args := Cursor{CreatedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, loc), ID: id}.Keyset()
	require.Contains(t, clause, "created_at < ?")
	require.Len(t, args, 3)
	require.Equal(t, time.UTC, args[0].(time.Time).Location())
	require.Equal(t, id, args[2])
}
