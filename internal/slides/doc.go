// Package slides provides Google Slides API integration.
//
// Read operations expose presentation metadata, per-slide element listings,
// and plain-text extraction from shapes and tables. Write operations go
// through the BatchUpdate API: creating presentations, adding slides with a
// predefined layout, and placing text boxes on a slide.
package slides
