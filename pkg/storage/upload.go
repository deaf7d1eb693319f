package storage

import (
	"bytes"
	"io"
	"mime/multipart"
)

// FromFileHeader wraps a multipart part. Returns nil for a missing or empty part.
func FromFileHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil || fh.Size == 0 {
		return nil
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func FromBytes(filename, contentType string, data []byte) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
