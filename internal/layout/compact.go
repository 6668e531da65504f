package layout

func compact() *Layout {
	return &Layout{
		Name:   "compact",
		Fields: []Field{FieldEmail},
	}
}
