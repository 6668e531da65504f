package layout

func detailed() *Layout {
	return &Layout{
		Name: "detailed",
		Fields: []Field{
			FieldEmail, FieldEducation, FieldSkills, FieldProjects,
			FieldWork, FieldLinks,
		},
	}
}
