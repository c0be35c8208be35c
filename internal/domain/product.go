package domain

import "strings"

type Material string

const (
	MaterialPETG  Material = "PETG"
	MaterialPLA   Material = "PLA"
	MaterialABS   Material = "ABS"
	MaterialResin Material = "Resin"
)

var Materials = []Material{MaterialPETG, MaterialPLA, MaterialABS, MaterialResin}

func (m Material) Valid() bool {
	for _, v := range Materials {
		if v == m {
			return true
		}
	}
	return false
}

type Color string

const (
	ColorBlue  Color = "Xanh lam"
	ColorRed   Color = "Đỏ"
	ColorBlack Color = "Đen"
	ColorWhite Color = "Trắng"
	ColorClear Color = "Trong suốt"
)

var Colors = []Color{ColorBlue, ColorRed, ColorBlack, ColorWhite, ColorClear}

func (c Color) Valid() bool {
	for _, v := range Colors {
		if v == c {
			return true
		}
	}
	return false
}

const (
	// UnitRate is the VND price of one printed unit.
	UnitRate int64 = 100000

	DefaultProductName = "Đặt in theo mẫu"

	PlaceholderModel     = "https://placehold.co/100x100?text=3D+Model"
	PlaceholderModelFile = "https://placehold.co/100x100?text=STL/OBJ"
)

// Product is one checkout line. Price is the line total, not a unit price.
type Product struct {
	Name     string   `json:"name"`
	Image    string   `json:"image"`
	Material Material `json:"material"`
	Color    Color    `json:"color"`
	Quantity int      `json:"quantity"`
	Price    int64    `json:"price"`
}

// MaxQuantity caps a single line so its price stays well inside int64.
const MaxQuantity = 10000

// NormalizeQuantity maps anything below one to one and anything above
// MaxQuantity to MaxQuantity.
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func LinePrice(quantity int) int64 {
	return UnitRate * int64(NormalizeQuantity(quantity))
}

// IsImageType reports whether a declared content type is an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
