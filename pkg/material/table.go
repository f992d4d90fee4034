package material

import "fmt"

// ID identifies a material inside a Table
type ID int

// Table owns every material of a scene. Shapes refer to entries by ID so
// hit records stay plain values that can be copied between goroutines.
type Table struct {
	materials []Material
}

// NewTable creates an empty material table
func NewTable() *Table {
	return &Table{}
}

// Add registers a material and returns its ID
func (t *Table) Add(m Material) ID {
	t.materials = append(t.materials, m)
	return ID(len(t.materials) - 1)
}

// Get returns the material for id
func (t *Table) Get(id ID) Material {
	return t.materials[id]
}

// Lookup returns the material for id, or an error if id is out of range
func (t *Table) Lookup(id ID) (Material, error) {
	if id < 0 || int(id) >= len(t.materials) {
		return nil, fmt.Errorf("material %d not in table of %d", id, len(t.materials))
	}
	return t.materials[id], nil
}

// Len returns the number of registered materials
func (t *Table) Len() int {
	return len(t.materials)
}
