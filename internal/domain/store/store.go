// Package store holds the "where to buy" partner list. Stores are static
// reference data shipped with the binary; they are not persisted remotely.
package store

// Store is a retail partner that stocks the factory's products.
type Store struct {
	ID   string
	Name string
	Logo string
	URL  string
}
