// Package storage uploads user media to an object store and returns public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/clipshare/config"
)

// Kind selects the key prefix an upload is stored under.
type Kind string

const (
	KindProfile   Kind = "profile-images"
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"

	CacheControl = "public, max-age=31536000, immutable"
)

var ErrEmptyUpload = errors.New("empty upload")

// ParseKind maps the route segment used by the file endpoints to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "profile":
		return KindProfile, true
	case "video":
		return KindVideo, true
	case "thumbnail":
		return KindThumbnail, true
	}
	return "", false
}

// Upload describes an incoming file without buffering it.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func (u *Upload) Empty() bool {
	return u == nil || u.Size <= 0 || u.Open == nil
}

// Object is what a backend needs to write one object.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Backend writes objects and knows how to address them publicly.
type Backend interface {
	Put(ctx context.Context, obj Object) error
	URL(key string) string
}

// Gateway generates keys and hands uploads to the configured backend.
type Gateway struct {
	backend Backend
	newID   func() string
}

func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend, newID: func() string { return uuid.NewString() }}
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (*Gateway, error) {
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "minio":
		b, err = NewMinio(ctx, cfg)
	case "s3":
		b, err = NewS3(cfg)
	case "memory":
		b = NewMemory(cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewGateway(b), nil
}

func (g *Gateway) Store(ctx context.Context, kind Kind, up *Upload) (string, error) {
	if up.Empty() {
		return "", ErrEmptyUpload
	}
	body, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer body.Close()

	key := g.key(kind, up.Filename)
	if err := g.backend.Put(ctx, Object{
		Key:         key,
		ContentType: contentType(up),
		Size:        up.Size,
		Body:        body,
	}); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return g.backend.URL(key), nil
}

func (g *Gateway) StoreProfileImage(ctx context.Context, up *Upload) (string, error) {
	return g.Store(ctx, KindProfile, up)
}

func (g *Gateway) StoreVideo(ctx context.Context, up *Upload) (string, error) {
	return g.Store(ctx, KindVideo, up)
}

func (g *Gateway) StoreThumbnail(ctx context.Context, up *Upload) (string, error) {
	return g.Store(ctx, KindThumbnail, up)
}

// key is "<dir>/<uuid><ext>", keeping the original extension when present.
func (g *Gateway) key(kind Kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return string(kind) + "/" + g.newID() + ext
}

func contentType(up *Upload) string {
	if up.ContentType != "" {
		return up.ContentType
	}
	return "application/octet-stream"
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
