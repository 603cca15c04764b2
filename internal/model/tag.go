package model

// Tag is a user owned label attached to recipes.
type Tag struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"-" gorm:"not null;index"`
	Name   string `json:"name" gorm:"size:255;not null"`
}

func (t Tag) String() string {
	return t.Name
}

// Ingredient is a user owned ingredient referenced by recipes.
type Ingredient struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"-" gorm:"not null;index"`
	Name   string `json:"name" gorm:"size:255;not null"`
}

func (i Ingredient) String() string {
	return i.Name
}

// Attribute is satisfied by the two named, owner scoped recipe attributes.
type Attribute interface {
	Tag | Ingredient
}
