package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/profilecards/internal/schema"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("profiles").Parse(`# Profiles
{{ range . }}
## {{ .Name }}
{{ range .Lines }}
- **{{ .Label }}:** {{ .Value }}{{ end }}
{{ else }}
*No profiles.*
{{ end }}`))

func (r *markdownRenderer) Render(cards []schema.Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, cards); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *markdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
