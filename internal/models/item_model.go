package models

// Item is a vault entry as returned by `bw list items`.
// Only the fields needed to resolve an item by name are decoded.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
