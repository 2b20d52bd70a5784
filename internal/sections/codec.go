package sections

import (
	"encoding/json"
	"fmt"
	"sort"
)

// sectionEnvelope mirrors Section with the payload left raw so the
// variant can be decoded after the type tag is known.
type sectionEnvelope struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Order     int             `json:"order"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

// MarshalJSON implements json.Marshaler.
func (s Section) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if s.Data != nil {
		b, err := json.Marshal(s.Data)
		if err != nil {
			return nil, err
		}
		raw = b
	} else {
		raw = json.RawMessage("{}")
	}
	return json.Marshal(sectionEnvelope{
		ID:        s.ID,
		Type:      s.Type,
		Order:     s.Order,
		Data:      raw,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching the payload on
// the type tag.
func (s *Section) UnmarshalJSON(b []byte) error {
	var env sectionEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	data, err := decodeData(env.Type, env.Data)
	if err != nil {
		return err
	}
	s.ID = env.ID
	s.Type = env.Type
	s.Order = env.Order
	s.Data = data
	s.CreatedAt = env.CreatedAt
	s.UpdatedAt = env.UpdatedAt
	return nil
}

// decodeData decodes a raw payload into the variant dictated by t.
func decodeData(t Type, raw json.RawMessage) (Data, error) {
	data := DefaultData(t)
	if data == nil {
		return nil, fmt.Errorf("unknown section type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeList deserializes a stored sections blob. It is deliberately
// forgiving: empty input, a double-encoded blob (a JSON string holding
// JSON, which legacy rows contain), or a parse failure all resolve to
// an empty list rather than an error.
func DecodeList(raw []byte) []Section {
	if len(raw) == 0 {
		return []Section{}
	}
	// Unwrap double-encoded blobs.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return []Section{}
		}
		return DecodeList([]byte(inner))
	}
	var list []Section
	if err := json.Unmarshal(raw, &list); err != nil {
		return []Section{}
	}
	if list == nil {
		return []Section{}
	}
	return list
}

// EncodeList serializes sections for storage, sorted by display order.
// A nil slice encodes as an empty array.
func EncodeList(list []Section) ([]byte, error) {
	if list == nil {
		list = []Section{}
	}
	sorted := make([]Section, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return json.Marshal(sorted)
}
