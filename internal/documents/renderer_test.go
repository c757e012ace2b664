package documents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesKnownFields(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	html, err := renderer.Render(ActInitial, ActData{
		ActNumber:    "ACT-2026-014",
		Date:         "15.03.2026",
		PartnerName:  "Aysel Mammadova",
		PartnerFIN:   "1ABCDEF",
		ProductName:  "Gold Ring",
		CategoryName: "Rings",
		RentPrice:    "120.00",
		OperatorName: "N. Aliyeva",
	})
	require.NoError(t, err)
	require.Contains(t, html, "ACT-2026-014")
	require.Contains(t, html, "Aysel Mammadova")
	require.Contains(t, html, "Gold Ring")
	require.Contains(t, html, "120.00")
}

func TestRenderMissingFieldsBecomeBlankLines(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	// A half-filled act is still printable; the operator completes the
	// blanks by hand.
	html, err := renderer.Render(ActFinal, ActData{ActNumber: "ACT-2026-015"})
	require.NoError(t, err)
	require.Contains(t, html, "ACT-2026-015")
	require.Contains(t, html, "__________________")
}

func TestRenderRejectsUnknownActType(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render("APPENDIX", ActData{})
	require.ErrorIs(t, err, ErrUnknownActType)
}

func TestRenderBothTemplatesDiffer(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	data := ActData{ActNumber: "ACT-1"}
	initial, err := renderer.Render(ActInitial, data)
	require.NoError(t, err)
	final, err := renderer.Render(ActFinal, data)
	require.NoError(t, err)
	require.NotEqual(t, initial, final)
}
