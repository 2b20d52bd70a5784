package sections

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestSectionRoundTrip verifies every payload variant survives
// encode/decode with its concrete type intact.
func TestSectionRoundTrip(t *testing.T) {
	secs := []Section{
		New(TypeGallery, 0),
		New(TypeNormal, 1),
		New(TypeTextContent, 2),
		New(TypeVideo, 3),
		New(TypeRichText, 4),
		New(TypeLinks, 5),
	}
	secs[0].Data = &GalleryData{Rows: []GalleryRow{
		{ID: "r1", ImagesPerRow: 3, Images: []GalleryImage{{ID: "i1", Src: "/a.jpg", Alt: "a"}}},
	}}
	secs[1].Data = &NormalData{Content: "<p>hello</p>", ImageURL: "/b.png", ImagePosition: "left"}
	secs[3].Data = &VideoData{URL: "https://example.com/v.mp4", Title: "demo"}
	secs[5].Data = &LinksData{LinkLists: []LinkList{
		{ID: "l1", Type: "bullet", Items: []LinkItem{{ID: "x", Text: "home", URL: "/"}}},
	}}

	blob, err := EncodeList(secs)
	if err != nil {
		t.Fatalf("Failed to encode sections: %v", err)
	}

	decoded := DecodeList(blob)
	if len(decoded) != len(secs) {
		t.Fatalf("Expected %d sections, got %d", len(secs), len(decoded))
	}

	for i, sec := range decoded {
		if sec.ID != secs[i].ID {
			t.Errorf("Section %d: expected id %s, got %s", i, secs[i].ID, sec.ID)
		}
		if sec.Type != secs[i].Type {
			t.Errorf("Section %d: expected type %s, got %s", i, secs[i].Type, sec.Type)
		}
	}

	g, ok := decoded[0].Data.(*GalleryData)
	if !ok {
		t.Fatalf("Expected *GalleryData, got %T", decoded[0].Data)
	}
	if len(g.Rows) != 1 || g.Rows[0].ImagesPerRow != 3 {
		t.Errorf("Gallery payload lost content: %+v", g)
	}

	v, ok := decoded[3].Data.(*VideoData)
	if !ok {
		t.Fatalf("Expected *VideoData, got %T", decoded[3].Data)
	}
	if v.URL != "https://example.com/v.mp4" || v.Title != "demo" {
		t.Errorf("Video payload lost content: %+v", v)
	}
}

// TestEncodeListSortsByOrder verifies storage order follows the order
// field, not slice position.
func TestEncodeListSortsByOrder(t *testing.T) {
	a := New(TypeNormal, 2)
	b := New(TypeVideo, 0)
	c := New(TypeRichText, 1)

	blob, err := EncodeList([]Section{a, b, c})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded := DecodeList(blob)
	if decoded[0].ID != b.ID || decoded[1].ID != c.ID || decoded[2].ID != a.ID {
		t.Errorf("Sections not sorted by order: %v %v %v", decoded[0].Order, decoded[1].Order, decoded[2].Order)
	}
}

// TestEncodeListNil verifies a nil slice encodes as an empty array, not
// null.
func TestEncodeListNil(t *testing.T) {
	blob, err := EncodeList(nil)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if string(blob) != "[]" {
		t.Errorf("Expected [], got %s", blob)
	}
}

// TestDecodeListDefensive verifies malformed stored blobs resolve to an
// empty list instead of an error.
func TestDecodeListDefensive(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"garbage":      "{not json",
		"null":         "null",
		"wrong shape":  `{"a":1}`,
		"broken quote": `"[{"`,
	}
	for name, raw := range cases {
		got := DecodeList([]byte(raw))
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty list, got %v", name, got)
		}
	}
}

// TestDecodeListDoubleEncoded verifies legacy rows holding a JSON
// string of JSON still decode.
func TestDecodeListDoubleEncoded(t *testing.T) {
	sec := New(TypeRichText, 0)
	sec.Data = &RichTextData{Content: "<h1>hi</h1>"}

	inner, err := EncodeList([]Section{sec})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	outer, err := json.Marshal(string(inner))
	if err != nil {
		t.Fatalf("Failed to double-encode: %v", err)
	}

	decoded := DecodeList(outer)
	if len(decoded) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(decoded))
	}
	rt, ok := decoded[0].Data.(*RichTextData)
	if !ok || rt.Content != "<h1>hi</h1>" {
		t.Errorf("Double-encoded payload lost content: %+v", decoded[0].Data)
	}
}

// TestUnmarshalUnknownType verifies an unknown type tag is rejected at
// the single-section level.
func TestUnmarshalUnknownType(t *testing.T) {
	var sec Section
	err := json.Unmarshal([]byte(`{"id":"x","type":"carousel","order":0,"data":{}}`), &sec)
	if err == nil {
		t.Fatal("Expected error for unknown section type")
	}
	if !strings.Contains(err.Error(), "unknown section type") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// TestNewDefaults verifies the per-variant zero payloads.
func TestNewDefaults(t *testing.T) {
	if d := New(TypeGallery, 0).Data.(*GalleryData); d.Rows == nil || len(d.Rows) != 0 {
		t.Errorf("Gallery default should be empty rows, got %+v", d)
	}
	if d := New(TypeTextContent, 0).Data.(*TextContentData); d.TitleType != "h2" {
		t.Errorf("Text-content default titleType should be h2, got %q", d.TitleType)
	}
	if d := New(TypeVideo, 0).Data.(*VideoData); d.URL != "" || d.Title != "" {
		t.Errorf("Video default should be empty url and title, got %+v", d)
	}
	if d := New(TypeLinks, 0).Data.(*LinksData); d.LinkLists == nil || len(d.LinkLists) != 0 {
		t.Errorf("Links default should be empty lists, got %+v", d)
	}
	if !TypeGallery.Valid() || Type("carousel").Valid() {
		t.Error("Type validity check broken")
	}
}
