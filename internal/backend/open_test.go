package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hypertop/internal/errors"
	"github.com/rileyhilliard/hypertop/internal/logger"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"", PlatformAuto, false},
		{"auto", PlatformAuto, false},
		{" Linux ", PlatformLinux, false},
		{"generic", PlatformGeneric, false},
		{"bsd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Generic(t *testing.T) {
	log := logger.NewBufferLogger()
	b, err := Open(Options{Platform: PlatformGeneric, Logger: log})
	require.NoError(t, err)

	assert.Equal(t, "generic", b.Name())
	assert.False(t, b.HasGPU())
	assert.True(t, log.HasLevel("info"))
}
