package models

import "encoding/json"

// VaultRecord is one entry of a vault JSON dataset (prompts.json,
// projects.json, customgpts.json). The datasets are authored by hand in the
// content repository, so beyond the id only a few fields are guaranteed;
// everything else is carried through verbatim for the presentation layer.
type VaultRecord struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown dataset fields instead of dropping them
func (r *VaultRecord) UnmarshalJSON(data []byte) error {
	type known struct {
		ID          json.Number `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
	}

	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "id")
	delete(raw, "title")
	delete(raw, "description")

	r.ID = k.ID
	r.Title = k.Title
	r.Description = k.Description
	r.Extra = raw
	return nil
}

// MarshalJSON re-flattens the passthrough fields next to the known ones
func (r VaultRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}

	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = id

	title, err := json.Marshal(r.Title)
	if err != nil {
		return nil, err
	}
	out["title"] = title

	if r.Description != "" {
		desc, err := json.Marshal(r.Description)
		if err != nil {
			return nil, err
		}
		out["description"] = desc
	}

	return json.Marshal(out)
}
