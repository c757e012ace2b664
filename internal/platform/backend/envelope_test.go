package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestDecodePageDoubleNestedEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"data":{"data":{"content":[{"id":1,"name":"ring"}],"number":2,"size":20,"totalElements":55}}}`)

	page, err := DecodePage[widget](raw, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, "ring", page.Content[0].Name)
	require.Equal(t, 2, page.Number)
	require.Equal(t, 20, page.Size)
	require.Equal(t, 55, page.TotalElements)
	require.Equal(t, 40, page.Offset())
}

func TestDecodePageSingleNestedEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"data":{"content":[{"id":7,"name":"necklace"}],"number":0,"size":10,"totalElements":1}}`)

	page, err := DecodePage[widget](raw, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, 1, page.TotalElements)
}

func TestDecodePageBareObject(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"id":3,"name":"bracelet"}],"number":1,"size":5,"totalElements":6}`)

	page, err := DecodePage[widget](raw, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
	require.Equal(t, 5, page.Size)
	require.Equal(t, 6, page.TotalElements)
}

func TestDecodePageBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`)

	page, err := DecodePage[widget](raw, 25)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	require.Equal(t, 0, page.Number)
	require.Equal(t, 25, page.Size)
	require.Equal(t, 2, page.TotalElements)
}

func TestDecodePageMissingMetadataDefaults(t *testing.T) {
	raw := json.RawMessage(`{"content":[{"id":1,"name":"a"}]}`)

	page, err := DecodePage[widget](raw, 10)
	require.NoError(t, err)
	require.Equal(t, 0, page.Number)
	require.Equal(t, 10, page.Size)
	require.Equal(t, 0, page.TotalElements)
}

func TestDecodePageEmptyBody(t *testing.T) {
	page, err := DecodePage[widget](nil, 10)
	require.NoError(t, err)
	require.Empty(t, page.Content)
	require.Equal(t, 10, page.Size)
}

func TestDecodeEntityUnwrapsData(t *testing.T) {
	entity, err := DecodeEntity[widget](json.RawMessage(`{"data":{"id":9,"name":"brooch"}}`))
	require.NoError(t, err)
	require.Equal(t, int64(9), entity.ID)

	plain, err := DecodeEntity[widget](json.RawMessage(`{"id":4,"name":"pendant"}`))
	require.NoError(t, err)
	require.Equal(t, int64(4), plain.ID)
}

func TestDecodePageKeepsTopLevelPageNamedData(t *testing.T) {
	// A page object whose sibling field is literally named data must not
	// be peeled away.
	raw := json.RawMessage(`{"content":[{"id":1,"name":"a"}],"data":{"ignored":true},"totalElements":1}`)

	page, err := DecodePage[widget](raw, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, 1, page.TotalElements)
}
