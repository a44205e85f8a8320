package slides

import (
	slides "google.golang.org/api/slides/v1"
)

// PresentationInfo describes a presentation
type PresentationInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Locale     string  `json:"locale,omitempty"`
	SlideCount int     `json:"slide_count"`
	PageWidth  float64 `json:"page_width,omitempty"`
	PageHeight float64 `json:"page_height,omitempty"`
	PageUnit   string  `json:"page_unit,omitempty"`
}

// Element is one page element of a slide
type Element struct {
	ObjectID string `json:"object_id"`
	Type     string `json:"type"` // SHAPE, IMAGE, TABLE, VIDEO, LINE, SHEETS_CHART, WORD_ART, UNKNOWN
	Text     string `json:"text,omitempty"`
}

// Slide is one slide with its elements
type Slide struct {
	ObjectID string    `json:"object_id"`
	Elements []Element `json:"elements"`
}

// Text returns all text content of the slide, one element per line
func (s Slide) Text() string {
	return joinElementText(s.Elements)
}

func toPresentationInfo(p *slides.Presentation) *PresentationInfo {
	if p == nil {
		return &PresentationInfo{}
	}

	info := &PresentationInfo{
		ID:         p.PresentationId,
		Title:      p.Title,
		Locale:     p.Locale,
		SlideCount: len(p.Slides),
	}
	if p.PageSize != nil {
		if p.PageSize.Width != nil {
			info.PageWidth = p.PageSize.Width.Magnitude
			info.PageUnit = p.PageSize.Width.Unit
		}
		if p.PageSize.Height != nil {
			info.PageHeight = p.PageSize.Height.Magnitude
		}
	}
	return info
}

func toSlide(page *slides.Page) Slide {
	s := Slide{ObjectID: page.ObjectId}
	for _, el := range page.PageElements {
		s.Elements = append(s.Elements, toElement(el))
	}
	return s
}

func toElement(el *slides.PageElement) Element {
	if el == nil {
		return Element{Type: "UNKNOWN"}
	}

	out := Element{ObjectID: el.ObjectId, Type: "UNKNOWN"}
	switch {
	case el.Shape != nil:
		out.Type = "SHAPE"
		out.Text = ShapeText(el.Shape)
	case el.Image != nil:
		out.Type = "IMAGE"
	case el.Table != nil:
		out.Type = "TABLE"
		out.Text = TableText(el.Table)
	case el.Video != nil:
		out.Type = "VIDEO"
	case el.Line != nil:
		out.Type = "LINE"
	case el.SheetsChart != nil:
		out.Type = "SHEETS_CHART"
	case el.WordArt != nil:
		out.Type = "WORD_ART"
		out.Text = el.WordArt.RenderedText
	}
	return out
}
