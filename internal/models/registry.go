package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&PropertyImage{},
		&Client{},
		&Contract{},
		&Visit{},
		&Favorite{},
		&ContactForm{},
	}
}
