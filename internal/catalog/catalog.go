// Package catalog covers the reference-data screens of the dashboard:
// categories, colors, materials, occasions, carats and designers. The
// entities are small field bags round-tripped to the upstream API, so a
// single generic vertical serves all of them.
package catalog

// Category groups products for browsing and delivery acts.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// Color is a product color swatch.
type Color struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=80"`
	HexCode string `json:"hexCode,omitempty" validate:"omitempty,hexcolor"`
}

// Material is a jewelry base material.
type Material struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=80"`
}

// Occasion tags products with the event they suit.
type Occasion struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=80"`
}

// Carat is a gold purity grade.
type Carat struct {
	ID    int64  `json:"id"`
	Value int    `json:"value" validate:"required,gt=0,lte=24"`
	Label string `json:"label,omitempty" validate:"max=40"`
}

// Designer is a jewelry brand or maker.
type Designer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=120"`
	Country string `json:"country,omitempty" validate:"omitempty,len=2"`
}
