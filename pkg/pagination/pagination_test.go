package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, DefaultLimit, Clamp(0))
	assert.Equal(t, DefaultLimit, Clamp(-3))
	assert.Equal(t, 7, Clamp(7))
	assert.Equal(t, MaxLimit, Clamp(MaxLimit+1))
	assert.Equal(t, 8, Fetch(7))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 3, 9, 8, 7, 6, 123456789, time.FixedZone("IST", 19800)), ID: uuid.New()}
	out, err := Decode(in.Encode())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestDecode(t *testing.T) {
	cursor, err := Decode("  ")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	for _, token := range []string{"%%%", "bm9zZXBhcmF0b3I", "eC4xMjM"} {
		_, err := Decode(token)
		require.Error(t, err, token)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestSplit(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 4)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}
	key := func(c Cursor) Cursor { return c }

	page, next := Split(rows, 3, key)
	require.Len(t, page, 3)
	decoded, err := Decode(next)
	require.NoError(t, err)
	assert.Equal(t, rows[2].ID, decoded.ID)

	page, next = Split(rows[:2], 3, key)
	assert.Len(t, page, 2)
	assert.Empty(t, next)
}
