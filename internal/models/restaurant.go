package models

// Restaurant is a lunch spot listed by the application.
// ID is zero until the store assigns one on first commit.
type Restaurant struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Latitude  float64 `json:"latitude" db:"latitude"`
}
