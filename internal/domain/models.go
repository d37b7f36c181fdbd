package domain

// Models lists every persisted model in migration order
func Models() []any {
	return []any{
		&User{},
		&Profile{},
		&Contact{},
		&Activity{},
		&Video{},
		&Post{},
		&Category{},
		&Product{},
	}
}
