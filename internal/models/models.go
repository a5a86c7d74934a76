package models

// All returns every model owned by the service in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Shop{},
		&Category{},
		&Product{},
		&ProductInfo{},
		&Parameter{},
		&ProductParameter{},
		&Contact{},
		&Order{},
		&OrderItem{},
		&ConfirmEmailToken{},
		&ImportRun{},
	}
}
