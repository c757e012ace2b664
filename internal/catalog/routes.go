package catalog

import (
	"log/slog"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// Module bundles the six catalog verticals behind one mount point.
type Module struct {
	Categories *Handler[Category]
	Colors     *Handler[Color]
	Materials  *Handler[Material]
	Occasions  *Handler[Occasion]
	Carats     *Handler[Carat]
	Designers  *Handler[Designer]
}

// NewModule wires every catalog vertical against the backend client.
func NewModule(logger *slog.Logger, client *backend.Client, validate *validator.Validate) *Module {
	return &Module{
		Categories: NewHandler(logger, NewService[Category](client, "/categories", validate), "categories", nil, []listing.Column[Category]{
			{Header: "ID", Value: func(c Category) string { return strconv.FormatInt(c.ID, 10) }},
			{Header: "Name", Value: func(c Category) string { return c.Name }},
			{Header: "Description", Value: func(c Category) string { return c.Description }},
		}),
		Colors: NewHandler(logger, NewService[Color](client, "/colors", validate), "colors", nil, []listing.Column[Color]{
			{Header: "ID", Value: func(c Color) string { return strconv.FormatInt(c.ID, 10) }},
			{Header: "Name", Value: func(c Color) string { return c.Name }},
			{Header: "Hex", Value: func(c Color) string { return c.HexCode }},
		}),
		Materials: NewHandler(logger, NewService[Material](client, "/materials", validate), "materials", nil, []listing.Column[Material]{
			{Header: "ID", Value: func(m Material) string { return strconv.FormatInt(m.ID, 10) }},
			{Header: "Name", Value: func(m Material) string { return m.Name }},
		}),
		Occasions: NewHandler(logger, NewService[Occasion](client, "/occasions", validate), "occasions", nil, []listing.Column[Occasion]{
			{Header: "ID", Value: func(o Occasion) string { return strconv.FormatInt(o.ID, 10) }},
			{Header: "Name", Value: func(o Occasion) string { return o.Name }},
		}),
		Carats: NewHandler(logger, NewService[Carat](client, "/carats", validate), "carats", nil, []listing.Column[Carat]{
			{Header: "ID", Value: func(c Carat) string { return strconv.FormatInt(c.ID, 10) }},
			{Header: "Value", Value: func(c Carat) string { return strconv.Itoa(c.Value) }},
			{Header: "Label", Value: func(c Carat) string { return c.Label }},
		}),
		Designers: NewHandler(logger, NewService[Designer](client, "/designers", validate), "designers", nil, []listing.Column[Designer]{
			{Header: "ID", Value: func(d Designer) string { return strconv.FormatInt(d.ID, 10) }},
			{Header: "Name", Value: func(d Designer) string { return d.Name }},
			{Header: "Country", Value: func(d Designer) string { return d.Country }},
		}),
	}
}

// MountRoutes registers the catalog verticals under the current group.
func (m *Module) MountRoutes(r chi.Router) {
	r.Route("/categories", m.Categories.MountRoutes)
	r.Route("/colors", m.Colors.MountRoutes)
	r.Route("/materials", m.Materials.MountRoutes)
	r.Route("/occasions", m.Occasions.MountRoutes)
	r.Route("/carats", m.Carats.MountRoutes)
	r.Route("/designers", m.Designers.MountRoutes)
}
