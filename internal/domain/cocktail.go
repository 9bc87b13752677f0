// Package domain holds the catalog records shared by search, storage and transport layers.
package domain

// Cocktail is a read-only catalog item.
type Cocktail struct {
	ID          int64    `json:"id" yaml:"id" validate:"gte=0"`
	Name        string   `json:"name" yaml:"name" validate:"required,max=128"`
	Description string   `json:"description" yaml:"description"`
	Ingredients []string `json:"ingredients" yaml:"ingredients" validate:"required,min=1,dive,required"`
	Tags        []string `json:"tags" yaml:"tags" validate:"dive,required"`
}

// HasID reports whether the item has been assigned a stable identifier.
func (c Cocktail) HasID() bool {
	return c.ID > 0
}
