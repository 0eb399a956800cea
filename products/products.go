package products

import "fmt"

// Ref is a bare id reference as the backend nests it in DTOs
type Ref struct {
	ID int64 `json:"id"`
}

// Brand of a product
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Product is a catalogue item a farmer can add to a lot
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     Ref     `json:"productCategoryDTO"`
	Description  string  `json:"description,omitempty"`
	SizeOrVolume string  `json:"sizeOrVolume,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	StartPrice   float64 `json:"startPrice"`
	EndPrice     float64 `json:"endPrice"`
	Status       string  `json:"status,omitempty"`
	Brand        Brand   `json:"brandDTO"`
}

// Category groups products. ParentID is nil for top-level categories.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ParentID    *int64 `json:"parentId"`
}

// PriceField names one of a product's price columns
type PriceField string

const (
	StartPrice PriceField = "startPrice"
	EndPrice   PriceField = "endPrice"
)

// ParsePriceField accepts the JSON field name of a price column.
func ParsePriceField(name string) (PriceField, error) {
	switch PriceField(name) {
	case StartPrice, EndPrice:
		return PriceField(name), nil
	default:
		return "", fmt.Errorf("unknown price field %q", name)
	}
}

// Price returns the value of the named price column.
func (p Product) Price(field PriceField) (float64, bool) {
	switch field {
	case StartPrice:
		return p.StartPrice, true
	case EndPrice:
		return p.EndPrice, true
	default:
		return 0, false
	}
}
