// Package documents generates the delivery act paperwork: a deterministic
// HTML rendering of embedded templates, converted to PDF by Gotenberg.
package documents

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/gemdesk/gemdesk/web"
)

// Act types.
const (
	ActInitial = "INITIAL"
	ActFinal   = "FINAL"
)

// ErrUnknownActType rejects act types outside the two fixed templates.
var ErrUnknownActType = errors.New("documents: unknown act type")

// ActData feeds the act templates. Every field is a display string; empty
// values render as a blank line to be filled in by hand, never an error.
type ActData struct {
	ActNumber        string
	Date             string
	PartnerName      string
	PartnerFIN       string
	PartnerAddress   string
	ProductName      string
	ProductSKU       string
	ProductWeight    string
	CategoryName     string
	RentPrice        string
	SalePrice        string
	SettlementAmount string
	Description      string
	OperatorName     string
}

// Renderer renders act HTML from the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded act templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("acts").Funcs(template.FuncMap{
		"blank": blankLine,
	}).ParseFS(web.Templates, "templates/documents/*.html")
	if err != nil {
		return nil, fmt.Errorf("documents: parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render produces the act HTML for the given type.
func (r *Renderer) Render(actType string, data ActData) (string, error) {
	name, ok := templateName(actType)
	if !ok {
		return "", ErrUnknownActType
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("documents: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func templateName(actType string) (string, bool) {
	switch actType {
	case ActInitial:
		return "initial_act.html", true
	case ActFinal:
		return "final_act.html", true
	default:
		return "", false
	}
}

func blankLine(value string) string {
	if strings.TrimSpace(value) == "" {
		return "__________________"
	}
	return value
}
