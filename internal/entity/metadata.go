package entity

import (
	"encoding/json"
	"strings"
)

// Metadata is the preview record extracted from a linked page.
// Extra holds any additional keys found in a stored record so they survive a
// read/write cycle through the cache.
type Metadata struct {
	Title       string
	Description string
	Logo        string
	Extra       map[string]any
}

// RawPage is fetched page source together with the URL that produced it.
type RawPage struct {
	Text      string
	SourceURL string
}

var metadataKeys = map[string]struct{}{
	"title":       {},
	"description": {},
	"logo":        {},
}

// IsEmpty reports whether the record carries none of the preview fields.
func (m *Metadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	return strings.TrimSpace(m.Title) == "" &&
		strings.TrimSpace(m.Description) == "" &&
		strings.TrimSpace(m.Logo) == ""
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		if _, reserved := metadataKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.Logo != "" {
		out["logo"] = m.Logo
	}
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Metadata{}
	for key, value := range raw {
		switch key {
		case "title":
			if err := json.Unmarshal(value, &m.Title); err != nil {
				return err
			}
		case "description":
			if err := json.Unmarshal(value, &m.Description); err != nil {
				return err
			}
		case "logo":
			if err := json.Unmarshal(value, &m.Logo); err != nil {
				return err
			}
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = v
		}
	}
	return nil
}
