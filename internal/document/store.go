package document

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/lumenworks/sitecms/internal/sections"
)

// Store owns exactly one Product aggregate and is its single writer.
// Mutations are synchronous, strictly ordered, and cannot fail: an
// unknown section id or field name is silently ignored. Persistence is
// never a side effect here; publishing is an explicit caller step.
type Store struct {
	mu       sync.RWMutex
	product  Product
	revision uint64
}

// NewStore returns a store holding an empty product.
func NewStore() *Store {
	return &Store{product: Product{Sections: []sections.Section{}}}
}

// SetProduct replaces the whole aggregate, normalizing a nil section
// list to empty. No validation is performed; the source is trusted.
func (s *Store) SetProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Sections == nil {
		p.Sections = []sections.Section{}
	}
	s.product = p.Clone()
	s.revision++
}

// Product returns a deep copy of the aggregate.
func (s *Store) Product() Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.product.Clone()
}

// Revision returns the number of mutations applied so far.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Section returns a deep copy of the section with the given id.
func (s *Store) Section(id string) (sections.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.product.Sections {
		if sec.ID == id {
			return sec.Clone(), true
		}
	}
	return sections.Section{}, false
}

// UpdateField shallow-patches one scalar field by name. Unknown field
// names are ignored.
func (s *Store) UpdateField(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch field {
	case "type":
		s.product.Type = value
	case "category":
		s.product.Category = value
	case "thumbnail":
		s.product.Thumbnail = value
	case "ogImage":
		s.product.OGImage = value
	case "ogTwitter":
		s.product.OGTwitter = value
	case "date":
		s.product.Date = value
	case "title":
		s.product.Title = value
	case "cardDescription":
		s.product.CardDescription = value
	case "metaTitle":
		s.product.MetaTitle = value
	case "metaKeywords":
		s.product.MetaKeywords = value
	case "metaDescription":
		s.product.MetaDescription = value
	default:
		return
	}
	s.touch()
}

// AddSection appends a new section of the given type with a fresh
// unique id, order equal to the current section count, and the
// variant's zero-value payload (or initial, when non-nil). The new
// section is always last. Returns a copy of the created section.
func (s *Store) AddSection(t sections.Type, initial sections.Data) sections.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := sections.New(t, len(s.product.Sections))
	if initial != nil {
		sec.Data = initial.Clone()
	}
	s.product.Sections = append(s.product.Sections, sec)
	s.touch()
	return sec.Clone()
}

// RemoveSection deletes the section with the given id and re-densifies
// order values so they form 0..n-1 again. Ids are never reused.
func (s *Store) RemoveSection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.product.Sections = append(s.product.Sections[:idx], s.product.Sections[idx+1:]...)
	s.densify()
	s.touch()
}

// MoveSectionUp swaps the section's order with its immediate
// predecessor in display order; a no-op for the first section.
func (s *Store) MoveSectionUp(id string) {
	s.moveSection(id, -1)
}

// MoveSectionDown swaps the section's order with its immediate
// successor in display order; a no-op for the last section.
func (s *Store) MoveSectionDown(id string) {
	s.moveSection(id, +1)
}

func (s *Store) moveSection(id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := s.orderedIndexes()
	pos := -1
	for i, idx := range ordered {
		if s.product.Sections[idx].ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	neighbor := pos + delta
	if neighbor < 0 || neighbor >= len(ordered) {
		return
	}
	a := &s.product.Sections[ordered[pos]]
	b := &s.product.Sections[ordered[neighbor]]
	a.Order, b.Order = b.Order, a.Order
	now := time.Now().UnixMilli()
	a.UpdatedAt = now
	b.UpdatedAt = now
	s.touch()
}

// UpdateSection shallow-merges a partial payload into the section's
// data, preserving the section's variant: the merge result is decoded
// back into the existing payload type, so cross-variant leakage is
// impossible. Decode failures leave the section untouched.
func (s *Store) UpdateSection(id string, partial map[string]any) {
	if len(partial) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	sec := &s.product.Sections[idx]

	current, err := json.Marshal(sec.Data)
	if err != nil {
		return
	}
	merged := map[string]any{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return
	}
	for k, v := range partial {
		merged[k] = v
	}
	blob, err := json.Marshal(merged)
	if err != nil {
		return
	}
	next := sections.DefaultData(sec.Type)
	if next == nil {
		return
	}
	if err := json.Unmarshal(blob, next); err != nil {
		return
	}
	sec.Data = next
	sec.UpdatedAt = time.Now().UnixMilli()
	s.touch()
}

// UpdateGalleryData applies a gallery patch to the section with the
// given id. A no-op unless the section exists AND is a gallery; the
// type filter guards against cross-variant corruption.
func (s *Store) UpdateGalleryData(id string, patch sections.GalleryPatch) {
	s.updateVariant(id, sections.TypeGallery, func(d sections.Data) {
		patch.Apply(d.(*sections.GalleryData))
	})
}

// UpdateNormalData applies a normal-content patch; no-op on type mismatch.
func (s *Store) UpdateNormalData(id string, patch sections.NormalPatch) {
	s.updateVariant(id, sections.TypeNormal, func(d sections.Data) {
		patch.Apply(d.(*sections.NormalData))
	})
}

// UpdateTextContentData applies a text-content patch; no-op on type mismatch.
func (s *Store) UpdateTextContentData(id string, patch sections.TextContentPatch) {
	s.updateVariant(id, sections.TypeTextContent, func(d sections.Data) {
		patch.Apply(d.(*sections.TextContentData))
	})
}

// UpdateVideoData applies a video patch; no-op on type mismatch.
func (s *Store) UpdateVideoData(id string, patch sections.VideoPatch) {
	s.updateVariant(id, sections.TypeVideo, func(d sections.Data) {
		patch.Apply(d.(*sections.VideoData))
	})
}

// UpdateRichTextData applies a rich-text patch; no-op on type mismatch.
func (s *Store) UpdateRichTextData(id string, patch sections.RichTextPatch) {
	s.updateVariant(id, sections.TypeRichText, func(d sections.Data) {
		patch.Apply(d.(*sections.RichTextData))
	})
}

// UpdateLinksData applies a links patch; no-op on type mismatch.
func (s *Store) UpdateLinksData(id string, patch sections.LinksPatch) {
	s.updateVariant(id, sections.TypeLinks, func(d sections.Data) {
		patch.Apply(d.(*sections.LinksData))
	})
}

func (s *Store) updateVariant(id string, t sections.Type, apply func(sections.Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	sec := &s.product.Sections[idx]
	if sec.Type != t {
		return
	}
	apply(sec.Data)
	sec.UpdatedAt = time.Now().UnixMilli()
	s.touch()
}

// indexOf returns the slice index of the section with the given id, -1
// when absent. Caller must hold the lock.
func (s *Store) indexOf(id string) int {
	for i := range s.product.Sections {
		if s.product.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// orderedIndexes returns slice indexes sorted by display order. Caller
// must hold the lock.
func (s *Store) orderedIndexes() []int {
	idxs := make([]int, len(s.product.Sections))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return s.product.Sections[idxs[a]].Order < s.product.Sections[idxs[b]].Order
	})
	return idxs
}

// densify reassigns order values 0..n-1 preserving relative sequence.
// Caller must hold the lock.
func (s *Store) densify() {
	for rank, idx := range s.orderedIndexes() {
		s.product.Sections[idx].Order = rank
	}
}

// touch stamps the aggregate and bumps the revision. Caller must hold
// the lock.
func (s *Store) touch() {
	s.product.UpdatedAt = time.Now().UnixMilli()
	s.revision++
}
