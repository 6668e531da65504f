package render

import (
	"fmt"

	"github.com/dshills/profilecards/internal/schema"
)

// Renderer formats the cards of a display region for output.
type Renderer interface {
	Render(cards []schema.Card) ([]byte, error)
	// ContentType is the MIME type of the rendered output.
	ContentType() string
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "html" (default), "md", "json".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "html", "":
		return &htmlRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	case "json":
		return &jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are html, md, json", format)
	}
}
