package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dshills/profilecards/internal/schema"
)

// DefaultTopSkillsLimit is the number of skills TopSkills returns by default.
const DefaultTopSkillsLimit = 10

// fold returns the case-folded form of s for caseless comparison.
// A cases.Caser is stateful, so a fresh one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// TopSkills counts how many times each skill name appears across profiles and
// returns the most frequent, ranked from 1. Names are grouped exactly as
// written. Ties are broken by name. A limit <= 0 returns every skill.
func TopSkills(profiles []schema.Profile, limit int) []schema.SkillCount {
	counts := make(map[string]int)
	for _, p := range profiles {
		for _, s := range p.Skills {
			counts[s.Name]++
		}
	}

	out := make([]schema.SkillCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, schema.SkillCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// HasSkill reports whether p lists skill, compared without regard to case.
func HasSkill(p schema.Profile, skill string) bool {
	want := fold(strings.TrimSpace(skill))
	for _, s := range p.Skills {
		if fold(s.Name) == want {
			return true
		}
	}
	return false
}

// FilterBySkill returns the profiles listing skill. An empty skill returns
// profiles unchanged.
func FilterBySkill(profiles []schema.Profile, skill string) []schema.Profile {
	if strings.TrimSpace(skill) == "" {
		return profiles
	}
	out := make([]schema.Profile, 0, len(profiles))
	for _, p := range profiles {
		if HasSkill(p, skill) {
			out = append(out, p)
		}
	}
	return out
}

// ProjectsBySkill returns every project owned by a profile listing skill, in
// profile order. An empty skill returns all projects.
func ProjectsBySkill(profiles []schema.Profile, skill string) []schema.ProjectRef {
	var out []schema.ProjectRef
	for _, p := range FilterBySkill(profiles, skill) {
		for _, pr := range p.Projects {
			out = append(out, schema.ProjectRef{Project: pr, Owner: p.Name})
		}
	}
	return out
}

// Search returns profiles whose name, or any project title or description,
// contains q without regard to case. An empty q returns profiles unchanged.
func Search(profiles []schema.Profile, q string) []schema.Profile {
	q = fold(strings.TrimSpace(q))
	if q == "" {
		return profiles
	}
	out := make([]schema.Profile, 0, len(profiles))
	for _, p := range profiles {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p schema.Profile, folded string) bool {
	if strings.Contains(fold(p.Name), folded) {
		return true
	}
	for _, pr := range p.Projects {
		if strings.Contains(fold(pr.Title), folded) || strings.Contains(fold(pr.Description), folded) {
			return true
		}
	}
	return false
}

// Counts returns the total number of profiles and how many would render N/A
// for education, skills and projects respectively.
func Counts(profiles []schema.Profile) (total, noEducation, noSkills, noProjects int) {
	for _, p := range profiles {
		total++
		if p.Education == "" {
			noEducation++
		}
		if len(p.Skills) == 0 {
			noSkills++
		}
		if len(p.Projects) == 0 {
			noProjects++
		}
	}
	return
}
