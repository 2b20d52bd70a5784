// Package sections defines the ordered, heterogeneous content blocks a
// post is composed of. Each section carries a closed type tag that
// determines the shape of its payload; payloads form a sealed tagged
// union so a section can never hold data of the wrong shape.
package sections

import (
	"time"

	"github.com/google/uuid"
)

// Type is the closed tag identifying a section's payload shape.
type Type string

const (
	TypeGallery     Type = "gallery"
	TypeNormal      Type = "normal"
	TypeTextContent Type = "text-content"
	TypeVideo       Type = "video"
	TypeRichText    Type = "rich-text"
	TypeLinks       Type = "links"
)

// Valid reports whether t is one of the known section types.
func (t Type) Valid() bool {
	switch t {
	case TypeGallery, TypeNormal, TypeTextContent, TypeVideo, TypeRichText, TypeLinks:
		return true
	}
	return false
}

// Data is the variant payload of a section. It is implemented only by
// the payload types in this package.
type Data interface {
	sectionData()
	// Clone returns a deep copy so store reads never alias store state.
	Clone() Data
}

// Section is one ordered content block of a post. The id is generated
// once and stays stable for the section's lifetime; order is the
// authoritative display position, not slice position.
type Section struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Order     int    `json:"order"`
	Data      Data   `json:"data"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	c := s
	if s.Data != nil {
		c.Data = s.Data.Clone()
	}
	return c
}

// New constructs a section of the given type with a fresh unique id and
// the variant's zero-value payload.
func New(t Type, order int) Section {
	now := time.Now().UnixMilli()
	return Section{
		ID:        uuid.NewString(),
		Type:      t,
		Order:     order,
		Data:      DefaultData(t),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultData returns the zero-value payload for a section type, nil
// for unknown types.
func DefaultData(t Type) Data {
	switch t {
	case TypeGallery:
		return &GalleryData{Rows: []GalleryRow{}}
	case TypeNormal:
		return &NormalData{}
	case TypeTextContent:
		return &TextContentData{TitleType: "h2"}
	case TypeVideo:
		return &VideoData{}
	case TypeRichText:
		return &RichTextData{}
	case TypeLinks:
		return &LinksData{LinkLists: []LinkList{}}
	}
	return nil
}

// GalleryImage is one image of a gallery row.
type GalleryImage struct {
	ID  string `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// GalleryRow is one row of a gallery with its column count.
type GalleryRow struct {
	ID           string         `json:"id"`
	Images       []GalleryImage `json:"images"`
	ImagesPerRow int            `json:"imagesPerRow"`
}

// GalleryData is the payload of a gallery section.
type GalleryData struct {
	Rows []GalleryRow `json:"rows"`
}

// NormalData is the payload of a plain content block with an optional
// positioned image.
type NormalData struct {
	Content       string `json:"content"`
	ImageURL      string `json:"imageUrl,omitempty"`
	ImageAlt      string `json:"imageAlt,omitempty"`
	ImagePosition string `json:"imagePosition,omitempty"` // left | right | top | bottom
}

// TextContentImage is the optional illustration of a text-content section.
type TextContentImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// TextContentData is the payload of a titled text block.
type TextContentData struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	TitleType     string            `json:"titleType,omitempty"` // h1 | h2 | h3
	Image         *TextContentImage `json:"image,omitempty"`
	ImagePosition string            `json:"imagePosition,omitempty"` // left | right
	ImageCaption  string            `json:"imageCaption,omitempty"`
}

// VideoData is the payload of an embedded video section.
type VideoData struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// RichTextData is the payload of a WYSIWYG html block.
type RichTextData struct {
	Content string `json:"content"`
}

// LinkItem is one entry of a link list.
type LinkItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// LinkList is a bullet or numbered list of links.
type LinkList struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"` // bullet | numbered
	Items []LinkItem `json:"items"`
}

// LinksData is the payload of a links section.
type LinksData struct {
	LinkLists []LinkList `json:"linkLists"`
}

func (*GalleryData) sectionData()     {}
func (*NormalData) sectionData()      {}
func (*TextContentData) sectionData() {}
func (*VideoData) sectionData()       {}
func (*RichTextData) sectionData()    {}
func (*LinksData) sectionData()       {}

// Clone implements Data.
func (d *GalleryData) Clone() Data {
	c := &GalleryData{Rows: make([]GalleryRow, len(d.Rows))}
	for i, row := range d.Rows {
		r := row
		r.Images = append([]GalleryImage(nil), row.Images...)
		c.Rows[i] = r
	}
	return c
}

// Clone implements Data.
func (d *NormalData) Clone() Data {
	c := *d
	return &c
}

// Clone implements Data.
func (d *TextContentData) Clone() Data {
	c := *d
	if d.Image != nil {
		img := *d.Image
		c.Image = &img
	}
	return &c
}

// Clone implements Data.
func (d *VideoData) Clone() Data {
	c := *d
	return &c
}

// Clone implements Data.
func (d *RichTextData) Clone() Data {
	c := *d
	return &c
}

// Clone implements Data.
func (d *LinksData) Clone() Data {
	c := &LinksData{LinkLists: make([]LinkList, len(d.LinkLists))}
	for i, list := range d.LinkLists {
		l := list
		l.Items = append([]LinkItem(nil), list.Items...)
		c.LinkLists[i] = l
	}
	return c
}
