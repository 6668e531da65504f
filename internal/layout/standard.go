package layout

// standard matches the original page: email, education, skills, projects.
func standard() *Layout {
	return &Layout{
		Name:   "standard",
		Fields: []Field{FieldEmail, FieldEducation, FieldSkills, FieldProjects},
	}
}
