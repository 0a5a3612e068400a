package models

// Category is a row of the category table (e.g., {8, "Dining Out"}).
type Category struct {
	ID   int64
	Name string
}
