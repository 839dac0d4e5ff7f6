package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, cursor.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, cursor.ID, parsed.ID)
}

func TestParseCursorEmptyReturnsNil(t *testing.T) {
	parsed, err := ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)

	_, err = ParseCursor("bm8tc2VwYXJhdG9y")
	assert.Error(t, err)
}

type pageRow struct {
	createdAt time.Time
	id        uuid.UUID
}

func TestBuildPageWithoutBufferRow(t *testing.T) {
	rows := []pageRow{{createdAt: time.Now(), id: uuid.New()}}

	page := BuildPage(rows, 5, func(r pageRow) Cursor {
		return Cursor{CreatedAt: r.createdAt, ID: r.id}
	})

	assert.Len(t, page.Items, 1)
	assert.Empty(t, page.NextCursor)
}

func TestBuildPageTrimsBufferAndEncodesCursor(t *testing.T) {
	base := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	rows := make([]pageRow, 3)
	for i := range rows {
		rows[i] = pageRow{createdAt: base.Add(time.Duration(i) * time.Minute), id: uuid.New()}
	}

	page := BuildPage(rows, 2, func(r pageRow) Cursor {
		return Cursor{CreatedAt: r.createdAt, ID: r.id}
	})

	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	parsed, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, parsed.ID)
	assert.True(t, rows[1].createdAt.Equal(parsed.CreatedAt))
}
