package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/testarc/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "standard error",
			err:  errors.New("simple error"),
			want: []logger.ErrorEntry{{Message: "simple error"}},
		},
		{
			name: "wrapped chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle"), "outer"),
			want: []logger.ErrorEntry{
				{Message: "outer", Metadata: map[string]any{}},
				{Message: "middle", Metadata: map[string]any{}},
				{Message: "root cause"},
			},
		},
		{
			name: "metadata",
			err:  zerr.With(zerr.With(zerr.New("base"), "path", "a.go"), "line", 3),
			want: []logger.ErrorEntry{
				{Message: "base", Metadata: map[string]any{"path": "a.go", "line": 3}},
			},
		},
		{
			name: "metadata on a standard error",
			err:  zerr.With(errors.New("permission denied"), "path", "/tmp/x"),
			want: []logger.ErrorEntry{
				{Message: "permission denied", Metadata: map[string]any{"path": "/tmp/x"}},
			},
		},
		{
			name: "joined",
			err: errors.Join(
				zerr.New("resource not found"),
				zerr.With(zerr.Wrap(errors.New("no such file"), "cannot open source"), "path", "a.go"),
			),
			want: []logger.ErrorEntry{
				{Message: "resource not found", Metadata: map[string]any{}},
				{Message: "cannot open source", Metadata: map[string]any{"path": "a.go"}},
				{Message: "no such file"},
			},
		},
		{
			name: "nil",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single",
			entries: []logger.ErrorEntry{{Message: "compilation failed"}},
			want:    "Error: compilation failed",
		},
		{
			name: "causes",
			entries: []logger.ErrorEntry{
				{Message: "compilation failed"},
				{Message: "compiler reported errors", Metadata: map[string]any{"diagnostics": "a.go:3:1: x\nb.go:1:1: y"}},
				{Message: "root"},
			},
			want: "Error: compilation failed\n" +
				"\n" +
				"  Caused by:\n" +
				"    → compiler reported errors\n" +
				"      diagnostics=a.go:3:1: x\n" +
				"      b.go:1:1: y\n" +
				"    → root",
		},
		{
			name: "multiline head with sorted metadata",
			entries: []logger.ErrorEntry{
				{Message: "first\nsecond", Metadata: map[string]any{"name": "app", "artifact": "base"}},
			},
			want: "Error: first\n" +
				"       second\n" +
				"       artifact=base\n" +
				"       name=app",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
