package gmail

import (
	"encoding/base64"
	"regexp"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ExtractBody pulls a plain-text body out of a message payload.
//
// Single-part messages carry the body directly. Multipart messages are
// walked recursively, preferring text/plain parts; if only HTML is present
// the tags are stripped. Returns "" when no text could be extracted.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		text := decodeBody(payload.Body.Data)
		if strings.EqualFold(payload.MimeType, "text/html") {
			return StripHTML(text)
		}
		return text
	}

	if plain := findPart(payload.Parts, "text/plain"); plain != "" {
		return plain
	}
	if html := findPart(payload.Parts, "text/html"); html != "" {
		return StripHTML(html)
	}
	return ""
}

func findPart(parts []*gmail.MessagePart, mimeType string) string {
	for _, part := range parts {
		if part == nil {
			continue
		}
		if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
		if len(part.Parts) > 0 {
			if text := findPart(part.Parts, mimeType); text != "" {
				return text
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}

var (
	htmlTagRe    = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML body to readable plain text. This is a rough
// conversion for triage purposes, not a full renderer.
func StripHTML(html string) string {
	text := htmlTagRe.ReplaceAllString(html, " ")
	text = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
