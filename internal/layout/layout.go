package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/profilecards/internal/schema"
)

// NotAvailable is shown for an empty optional field.
const NotAvailable = "N/A"

// Field identifies one line a card can show.
type Field string

const (
	FieldEmail     Field = "Email"
	FieldEducation Field = "Education"
	FieldSkills    Field = "Skills"
	FieldProjects  Field = "Projects"
	FieldWork      Field = "Work"
	FieldLinks     Field = "Links"
)

// Layout defines which fields a named card layout renders, in order.
type Layout struct {
	Name   string
	Fields []Field
}

// Names lists the built-in layouts.
func Names() []string {
	return []string{"standard", "detailed", "compact"}
}

// Get returns the built-in layout for the given name.
func Get(name string) (*Layout, error) {
	switch name {
	case "standard", "":
		return standard(), nil
	case "detailed":
		return detailed(), nil
	case "compact":
		return compact(), nil
	default:
		return nil, fmt.Errorf("unknown layout %q: valid layouts are %s", name, strings.Join(Names(), ", "))
	}
}

// Card builds the card for p. Every field in the layout produces exactly one
// line; empty values fall back to NotAvailable.
func (l *Layout) Card(p schema.Profile) schema.Card {
	card := schema.Card{
		Name:  p.Name,
		Lines: make([]schema.CardLine, 0, len(l.Fields)),
	}
	for _, f := range l.Fields {
		card.Lines = append(card.Lines, schema.CardLine{Label: string(f), Value: fieldValue(f, p)})
	}
	return card
}

// Cards builds one card per profile, preserving order.
func (l *Layout) Cards(profiles []schema.Profile) []schema.Card {
	cards := make([]schema.Card, 0, len(profiles))
	for _, p := range profiles {
		cards = append(cards, l.Card(p))
	}
	return cards
}

func fieldValue(f Field, p schema.Profile) string {
	switch f {
	case FieldEmail:
		return p.Email
	case FieldEducation:
		return orNA(p.Education)
	case FieldSkills:
		return orNA(strings.Join(p.SkillNames(), ", "))
	case FieldProjects:
		return orNA(strings.Join(p.ProjectTitles(), ", "))
	case FieldWork:
		return orNA(formatWork(p.Work))
	case FieldLinks:
		return orNA(formatLinks(p))
	}
	return NotAvailable
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// formatWork renders entries as "Role at Company (Duration)", dropping the
// parts that are empty.
func formatWork(work []schema.Work) string {
	parts := make([]string, 0, len(work))
	for _, w := range work {
		var sb strings.Builder
		if w.Role != "" {
			sb.WriteString(w.Role)
			sb.WriteString(" at ")
		}
		sb.WriteString(w.Company)
		if w.Duration != "" {
			fmt.Fprintf(&sb, " (%s)", w.Duration)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "; ")
}

func formatLinks(p schema.Profile) string {
	var links []string
	for _, l := range []struct{ label, url string }{
		{"GitHub", p.GitHub},
		{"LinkedIn", p.LinkedIn},
		{"Portfolio", p.Portfolio},
	} {
		if l.url != "" {
			links = append(links, l.label+" "+l.url)
		}
	}
	return strings.Join(links, ", ")
}
