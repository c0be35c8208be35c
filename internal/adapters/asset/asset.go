// Package asset adapts uploaded files to domain.Asset and inlines images as
// data URLs.
package asset

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/phenrril/printorder/internal/domain"
)

// DefaultMaxImageBytes bounds how much of an image gets inlined.
const DefaultMaxImageBytes = 8 << 20

var (
	ErrTooLarge = errors.New("image too large to inline")
	ErrNotImage = errors.New("content is not an image")
)

type fileHeaderAsset struct {
	fh *multipart.FileHeader
}

// FromFileHeader wraps an uploaded multipart file. The content type is the
// one declared by the client, falling back to the file extension when the
// client sent none or a generic one.
func FromFileHeader(fh *multipart.FileHeader) domain.Asset {
	return fileHeaderAsset{fh: fh}
}

func (a fileHeaderAsset) Name() string { return a.fh.Filename }

func (a fileHeaderAsset) ContentType() string {
	ct := strings.TrimSpace(a.fh.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(a.fh.Filename))); byExt != "" {
		return byExt
	}
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

func (a fileHeaderAsset) Open() (io.ReadCloser, error) { return a.fh.Open() }

// PickLast returns the last non-empty upload across the given field groups,
// so browse and drop feed the same single-asset slot.
func PickLast(groups ...[]*multipart.FileHeader) *multipart.FileHeader {
	var last *multipart.FileHeader
	for _, g := range groups {
		for _, fh := range g {
			if fh != nil && fh.Size > 0 && fh.Filename != "" {
				last = fh
			}
		}
	}
	return last
}

// DataURLEncoder reads the full image and returns a base64 data URL. The
// media type is sniffed from the bytes, not taken from the client.
type DataURLEncoder struct {
	MaxBytes int64
}

func NewDataURLEncoder(maxBytes int64) *DataURLEncoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &DataURLEncoder{MaxBytes: maxBytes}
}

func (e *DataURLEncoder) Encode(ctx context.Context, a domain.Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := a.Open()
	if err != nil {
		return "", fmt.Errorf("open %q: %w", a.Name(), err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, e.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", a.Name(), err)
	}
	if int64(len(data)) > e.MaxBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%q detected as %s: %w", a.Name(), mt.String(), ErrNotImage)
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
