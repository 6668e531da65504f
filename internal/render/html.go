package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dshills/profilecards/internal/region"
	"github.com/dshills/profilecards/internal/schema"
)

type htmlRenderer struct{}

type htmlPage struct {
	ContainerID string
	CardClass   string
	Cards       []schema.Card
}

// Card values are escaped by html/template, so server data can never inject markup.
var htmlTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Profiles</title>
</head>
<body>
<div id="{{ .ContainerID }}">
{{- range .Cards }}
<div class="{{ $.CardClass }}">
<h2>{{ .Name }}</h2>
{{- range .Lines }}
<p>{{ .Label }}: {{ .Value }}</p>
{{- end }}
</div>
{{- end }}
</div>
</body>
</html>
`))

func (r *htmlRenderer) Render(cards []schema.Card) ([]byte, error) {
	var buf bytes.Buffer
	page := htmlPage{
		ContainerID: region.ContainerID,
		CardClass:   region.CardClass,
		Cards:       cards,
	}
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *htmlRenderer) ContentType() string { return "text/html; charset=utf-8" }
