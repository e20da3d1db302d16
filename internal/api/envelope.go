package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PageMeta describes server-side pagination of a list response.
type PageMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// The backend wraps payloads in {"data": ...}, and some list endpoints wrap
// twice: {"data": {"data": [...], "meta": {...}}}. Both shapes are accepted,
// preferring the inner one when present.

func decodeObject(raw json.RawMessage, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(raw, out)
}

func decodeList(raw json.RawMessage, out any) (PageMeta, error) {
	var outer struct {
		Data json.RawMessage `json:"data"`
		Meta *PageMeta       `json:"meta"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer.Data) == 0 {
		// No envelope at all: treat the body as the collection itself.
		if err := json.Unmarshal(raw, out); err != nil {
			return PageMeta{}, fmt.Errorf("decode list response: %w", err)
		}
		return PageMeta{}, nil
	}

	payload := outer.Data
	meta := outer.Meta

	if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		var inner struct {
			Data json.RawMessage `json:"data"`
			Meta *PageMeta       `json:"meta"`
		}
		if err := json.Unmarshal(payload, &inner); err == nil && len(inner.Data) > 0 {
			payload = inner.Data
			if inner.Meta != nil {
				meta = inner.Meta
			}
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return PageMeta{}, fmt.Errorf("decode list payload: %w", err)
	}
	if meta == nil {
		return PageMeta{}, nil
	}
	return *meta, nil
}
