package domain

import (
	"io"
	"strings"
)

type stubAsset struct {
	name        string
	contentType string
}

func (s stubAsset) Name() string        { return s.name }
func (s stubAsset) ContentType() string { return s.contentType }
func (s stubAsset) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
