package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/internal/core/domain"
)

func TestLogicalPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a.go", want: "a.go"},
		{in: "pkg/./a.go", want: "pkg/a.go"},
		{in: "pkg\\sub\\a.go", want: "pkg/sub/a.go"},
		{in: "pkg/../a.go", want: "a.go"},
		{in: "../a.go", wantErr: true},
		{in: "pkg/../../a.go", wantErr: true},
		{in: "/etc/passwd", wantErr: true},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.LogicalPath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrResourceNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := domain.Diagnostic{Message: "undefined: x"}
	assert.Equal(t, "undefined: x", d.String())
}
