package testarc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc"
)

const libTxtar = `-- lib/lib.go --
package lib

type Shape interface {
	Area() float64
}

type Square struct{ Side float64 }

func (s Square) Area() float64 { return s.Side * s.Side }
-- lib/data.txt --
payload
`

func TestNew_BuildAndAnalyze(t *testing.T) {
	m := testarc.New(testarc.WithTempDir(t.TempDir()))
	t.Cleanup(m.Cleanup)
	ctx := context.Background()

	art, err := m.NewBuilder().Txtar([]byte(libTxtar)).Build(ctx)
	require.NoError(t, err)
	assert.Contains(t, art.Entries(), "lib/lib.gox")
	assert.Contains(t, art.Entries(), "lib/data.txt")

	session, err := art.Analyze(ctx)
	require.NoError(t, err)

	shape, err := session.Lookup("lib.Shape")
	require.NoError(t, err)
	require.NotNil(t, shape)
	square, err := session.Lookup("lib.Square")
	require.NoError(t, err)
	require.NotNil(t, square)

	iface, ok := shape.Type().Underlying().(interface{ NumMethods() int })
	require.True(t, ok)
	assert.Equal(t, 1, iface.NumMethods())
}

func TestNew_CompileError(t *testing.T) {
	m := testarc.New(testarc.WithTempDir(t.TempDir()))
	t.Cleanup(m.Cleanup)

	_, err := m.NewBuilder().Txtar([]byte("-- a/a.go --\npackage a\n\nvar X = undefined\n")).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, testarc.ErrCompilationFailed))
}
