package backend

import (
	"encoding/json"
	"fmt"
)

// Page is the single page envelope every list consumer sees. The upstream
// API answers with several envelope shapes; DecodePage absorbs them all so
// the inconsistency never leaks past this package.
type Page[T any] struct {
	Content       []T `json:"content"`
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
}

// Offset returns the index of the first element within the full result set.
func (p Page[T]) Offset() int {
	return p.Number * p.Size
}

type rawPage struct {
	Data          json.RawMessage `json:"data"`
	Content       json.RawMessage `json:"content"`
	Number        *int            `json:"number"`
	Size          *int            `json:"size"`
	TotalElements *int            `json:"totalElements"`
}

// DecodePage normalizes any of the observed upstream list shapes into a
// Page: a page object, a page object nested under one or two "data" keys,
// or a bare JSON array. Missing number and size default to 0 and the
// requested size. A bare array carries no paging metadata at all, so its
// total is the content length; an envelope without totalElements keeps 0.
// The normalization is total and idempotent.
func DecodePage[T any](raw json.RawMessage, requestedSize int) (Page[T], error) {
	page := Page[T]{Content: []T{}, Size: requestedSize}
	if len(raw) == 0 {
		return page, nil
	}

	body := unwrapData(raw)

	if isJSONArray(body) {
		if err := json.Unmarshal(body, &page.Content); err != nil {
			return page, fmt.Errorf("backend: decode page content: %w", err)
		}
		page.TotalElements = len(page.Content)
		return page, nil
	}

	var envelope rawPage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return page, fmt.Errorf("backend: decode page envelope: %w", err)
	}
	if len(envelope.Content) > 0 {
		if err := json.Unmarshal(envelope.Content, &page.Content); err != nil {
			return page, fmt.Errorf("backend: decode page content: %w", err)
		}
	}
	if envelope.Number != nil {
		page.Number = *envelope.Number
	}
	if envelope.Size != nil && *envelope.Size > 0 {
		page.Size = *envelope.Size
	}
	if envelope.TotalElements != nil {
		page.TotalElements = *envelope.TotalElements
	}
	return page, nil
}

// DecodeEntity unwraps an optional "data" nesting around a single entity.
func DecodeEntity[T any](raw json.RawMessage) (T, error) {
	var entity T
	body := unwrapData(raw)
	if len(body) == 0 {
		return entity, nil
	}
	if err := json.Unmarshal(body, &entity); err != nil {
		return entity, fmt.Errorf("backend: decode entity: %w", err)
	}
	return entity, nil
}

// unwrapData peels "data" wrappers until the payload itself surfaces.
// A level is only peeled when it carries no "content" of its own, so a
// legitimate page object named data at the top level is left intact.
func unwrapData(raw json.RawMessage) json.RawMessage {
	current := raw
	for range 3 {
		var probe struct {
			Data    json.RawMessage `json:"data"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(current, &probe); err != nil {
			return current
		}
		if len(probe.Content) > 0 || len(probe.Data) == 0 {
			return current
		}
		current = probe.Data
	}
	return current
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
