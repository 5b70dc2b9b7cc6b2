package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-5))
	require.Equal(t, 40, NormalizeLimit(40))
	require.Equal(t, MaxLimit, NormalizeLimit(500))
	require.Equal(t, 41, LimitWithBuffer(40))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}
	encoded := EncodeCursor(in)

	out, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	empty, err := ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, empty)

	_, err = ParseCursor("not-base64!!!")
	require.Error(t, err)

	_, err = ParseCursor("bm8tcGlwZQ==") // decodes to "no-pipe"
	require.Error(t, err)
}
