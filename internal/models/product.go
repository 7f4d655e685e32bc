package models

// Product is a catalog item kept alongside restaurants.
// No HTTP action reads or writes products yet.
type Product struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Category string  `json:"category" db:"category"`
}
