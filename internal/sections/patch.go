package sections

// Patch types carry partial updates for one payload variant. A nil
// field means "leave as is"; the variant-scoped store operations apply
// them with shallow-merge semantics.

// GalleryPatch is a partial update of GalleryData.
type GalleryPatch struct {
	Rows *[]GalleryRow `json:"rows,omitempty"`
}

// Apply merges the patch into d.
func (p GalleryPatch) Apply(d *GalleryData) {
	if p.Rows != nil {
		d.Rows = append([]GalleryRow(nil), (*p.Rows)...)
	}
}

// NormalPatch is a partial update of NormalData.
type NormalPatch struct {
	Content       *string `json:"content,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	ImageAlt      *string `json:"imageAlt,omitempty"`
	ImagePosition *string `json:"imagePosition,omitempty"`
}

// Apply merges the patch into d.
func (p NormalPatch) Apply(d *NormalData) {
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.ImageURL != nil {
		d.ImageURL = *p.ImageURL
	}
	if p.ImageAlt != nil {
		d.ImageAlt = *p.ImageAlt
	}
	if p.ImagePosition != nil {
		d.ImagePosition = *p.ImagePosition
	}
}

// TextContentPatch is a partial update of TextContentData. A non-nil
// Image replaces the whole image value.
type TextContentPatch struct {
	Title         *string           `json:"title,omitempty"`
	Content       *string           `json:"content,omitempty"`
	TitleType     *string           `json:"titleType,omitempty"`
	Image         *TextContentImage `json:"image,omitempty"`
	ImagePosition *string           `json:"imagePosition,omitempty"`
	ImageCaption  *string           `json:"imageCaption,omitempty"`
}

// Apply merges the patch into d.
func (p TextContentPatch) Apply(d *TextContentData) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.TitleType != nil {
		d.TitleType = *p.TitleType
	}
	if p.Image != nil {
		img := *p.Image
		d.Image = &img
	}
	if p.ImagePosition != nil {
		d.ImagePosition = *p.ImagePosition
	}
	if p.ImageCaption != nil {
		d.ImageCaption = *p.ImageCaption
	}
}

// VideoPatch is a partial update of VideoData.
type VideoPatch struct {
	URL   *string `json:"url,omitempty"`
	Title *string `json:"title,omitempty"`
}

// Apply merges the patch into d.
func (p VideoPatch) Apply(d *VideoData) {
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
}

// RichTextPatch is a partial update of RichTextData.
type RichTextPatch struct {
	Content *string `json:"content,omitempty"`
}

// Apply merges the patch into d.
func (p RichTextPatch) Apply(d *RichTextData) {
	if p.Content != nil {
		d.Content = *p.Content
	}
}

// LinksPatch is a partial update of LinksData.
type LinksPatch struct {
	LinkLists *[]LinkList `json:"linkLists,omitempty"`
}

// Apply merges the patch into d.
func (p LinksPatch) Apply(d *LinksData) {
	if p.LinkLists != nil {
		d.LinkLists = append([]LinkList(nil), (*p.LinkLists)...)
	}
}
