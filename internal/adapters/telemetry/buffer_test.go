package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineBuffer(t *testing.T) {
	var got []string
	b := newLineBuffer(func(data []byte) {
		got = append(got, string(data))
	})

	n, err := b.Write([]byte("first line\nsecond"))
	assert.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, []string{"first line\n"}, got)

	_, _ = b.Write([]byte(" half\nthird\n"))
	assert.Equal(t, []string{"first line\n", "second half\nthird\n"}, got)

	_, _ = b.Write([]byte("tail"))
	b.Close()
	assert.Equal(t, []string{"first line\n", "second half\nthird\n", "tail"}, got)

	n, err = b.Write([]byte("late\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	b.Close()
	assert.Len(t, got, 3)
}
