package probe

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/clipshare/pkg/storage"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want int
		ok   bool
	}{
		{"rounds down", `{"format":{"duration":"12.300000"}}`, 12, true},
		{"rounds up", `{"format":{"duration":"12.500000"}}`, 13, true},
		{"zero", `{"format":{"duration":"0.000000"}}`, 0, true},
		{"missing", `{"format":{}}`, 0, false},
		{"not a number", `{"format":{"duration":"N/A"}}`, 0, false},
		{"not json", `garbage`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDuration(tc.out)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFFProbe_RuntimeFromProbeOutput(t *testing.T) {
	p := NewFFProbe(time.Second)
	var probed string
	p.probe = func(file string, timeout time.Duration) (string, error) {
		probed = file
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, "frames", string(data))
		return `{"format":{"duration":"41.7"}}`, nil
	}

	got := p.Runtime(context.Background(), storage.FromBytes("clip.mp4", "video/mp4", []byte("frames")))
	assert.Equal(t, 42, got)

	_, err := os.Stat(probed)
	assert.True(t, os.IsNotExist(err), "temp file should be removed")
}

func TestFFProbe_FailureYieldsZero(t *testing.T) {
	p := NewFFProbe(time.Second)
	p.probe = func(string, time.Duration) (string, error) {
		return "", errors.New("exec: ffprobe not found")
	}
	assert.Equal(t, 0, p.Runtime(context.Background(), storage.FromBytes("a.mp4", "", []byte("x"))))
}

func TestFFProbe_ExpiredContextYieldsZero(t *testing.T) {
	p := NewFFProbe(time.Second)
	p.probe = func(string, time.Duration) (string, error) {
		t.Fatal("probe should not run")
		return "", nil
	}
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Equal(t, 0, p.Runtime(ctx, storage.FromBytes("a.mp4", "", []byte("x"))))
}

func TestFFProbe_EmptyUpload(t *testing.T) {
	assert.Equal(t, 0, NewFFProbe(0).Runtime(context.Background(), nil))
}
