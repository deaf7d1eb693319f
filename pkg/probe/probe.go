// Package probe reads a video's duration with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/pkg/logger"
	"github.com/d60-Lab/clipshare/pkg/storage"
)

const DefaultTimeout = 30 * time.Second

// Prober returns a media runtime in whole seconds, 0 when it cannot be read.
type Prober interface {
	Runtime(ctx context.Context, up *storage.Upload) int
}

// FFProbe shells out to ffprobe against a temporary copy of the upload.
type FFProbe struct {
	timeout time.Duration
	probe   func(file string, timeout time.Duration) (string, error)
}

func NewFFProbe(timeout time.Duration) *FFProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FFProbe{
		timeout: timeout,
		probe: func(file string, timeout time.Duration) (string, error) {
			return ffmpeg.ProbeWithTimeout(file, timeout, ffmpeg.KwArgs{})
		},
	}
}

func (p *FFProbe) Runtime(ctx context.Context, up *storage.Upload) int {
	if up.Empty() {
		return 0
	}
	tmp, err := copyToTemp(up)
	if err != nil {
		logger.Warn("probe: temp copy failed", zap.Error(err))
		return 0
	}
	defer os.Remove(tmp)

	timeout := p.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0
	}

	out, err := p.probe(tmp, timeout)
	if err != nil {
		logger.Warn("probe: ffprobe failed", zap.String("file", up.Filename), zap.Error(err))
		return 0
	}
	secs, err := ParseDuration(out)
	if err != nil {
		logger.Warn("probe: unreadable output", zap.String("file", up.Filename), zap.Error(err))
		return 0
	}
	return secs
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseDuration extracts format.duration from ffprobe JSON and rounds it to seconds.
func ParseDuration(out string) (int, error) {
	var po probeOutput
	if err := json.Unmarshal([]byte(out), &po); err != nil {
		return 0, err
	}
	if po.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in probe output")
	}
	d, err := strconv.ParseFloat(po.Format.Duration, 64)
	if err != nil {
		return 0, err
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("bad duration %q", po.Format.Duration)
	}
	return int(math.Round(d)), nil
}

func copyToTemp(up *storage.Upload) (string, error) {
	src, err := up.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	f, err := os.CreateTemp("", "probe-*"+filepath.Ext(up.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Fixed always reports the same runtime.
type Fixed int

func (f Fixed) Runtime(context.Context, *storage.Upload) int { return int(f) }
