package schema

// Profile is one person record as returned by GET /profiles.
// Only Name, Email, Education, Skills and Projects are required to render a
// standard card; the remaining fields are decoded when the backend sends them.
type Profile struct {
	ID        int       `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Education string    `json:"education,omitempty"` // null and absent both decode to ""
	GitHub    string    `json:"github,omitempty"`
	LinkedIn  string    `json:"linkedin,omitempty"`
	Portfolio string    `json:"portfolio,omitempty"`
	Skills    []Skill   `json:"skills"`
	Projects  []Project `json:"projects"`
	Work      []Work    `json:"work,omitempty"`
}

// Skill is a named skill attached to a profile.
type Skill struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Project is a project attached to a profile.
type Project struct {
	ID          int    `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Work is one work-history entry.
type Work struct {
	ID       int    `json:"id,omitempty"`
	Company  string `json:"company"`
	Role     string `json:"role,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// SkillNames returns the skill names in order.
func (p Profile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// ProjectTitles returns the project titles in order.
func (p Profile) ProjectTitles() []string {
	titles := make([]string, 0, len(p.Projects))
	for _, pr := range p.Projects {
		titles = append(titles, pr.Title)
	}
	return titles
}

// Card is the rendered form of one profile inside the display region.
type Card struct {
	Name  string     `json:"name"`
	Lines []CardLine `json:"lines"`
}

// CardLine is a single "Label: Value" row of a card.
type CardLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Value returns the value of the first line with the given label, or "" if
// the card has no such line.
func (c Card) Value(label string) string {
	for _, l := range c.Lines {
		if l.Label == label {
			return l.Value
		}
	}
	return ""
}

// SkillCount is an aggregated skill with the number of profiles listing it.
type SkillCount struct {
	Rank  int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProjectRef is a project along with the name of the profile that owns it.
type ProjectRef struct {
	Project
	Owner string `json:"owner"`
}
