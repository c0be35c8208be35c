package domain

import (
	"context"
	"io"
	"strings"
)

// Asset is an uploaded file: a model (STL/OBJ/...) or an image.
type Asset interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

// ImageEncoder turns an image asset into an inline reference that survives
// serialization (a data URL).
type ImageEncoder interface {
	Encode(ctx context.Context, a Asset) (string, error)
}

// Selection is the configurator's in-flight input.
type Selection struct {
	Asset    Asset
	Material Material
	Color    Color
	Quantity int
	// Notes are collected but not carried into Product.
	// TODO: add a notes field to Product once the checkout page renders it.
	Notes string
	// Preview is a transient display reference and is never persisted.
	Preview string
}

func NewSelection() *Selection {
	return &Selection{Material: MaterialPETG, Color: ColorBlue, Quantity: 1}
}

// Attach replaces the current asset; the last one attached wins.
func (s *Selection) Attach(a Asset) {
	s.Asset = a
	s.Preview = ""
}

func (s *Selection) SetQuantity(q int) {
	s.Quantity = NormalizeQuantity(q)
}

func (s *Selection) Price() int64 {
	return LinePrice(s.Quantity)
}

func (s *Selection) DisplayName() string {
	if s.Asset != nil {
		if n := strings.TrimSpace(s.Asset.Name()); n != "" {
			return n
		}
	}
	return DefaultProductName
}

func (s *Selection) HasImage() bool {
	return s.Asset != nil && IsImageType(s.Asset.ContentType())
}
