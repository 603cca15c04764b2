package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is owned by a single user and links to that user's tags and ingredients.
type Recipe struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"-" gorm:"not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	TimeMinutes int             `json:"time_minutes" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(7,2);not null"`
	Link        string          `json:"link" gorm:"size:255"`
	Image       string          `json:"image,omitempty" gorm:"size:255"` // Relative to the media root
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`

	// Relations
	Tags        []Tag        `json:"tags" gorm:"many2many:recipe_tags;"`
	Ingredients []Ingredient `json:"ingredients" gorm:"many2many:recipe_ingredients;"`
}

func (r Recipe) String() string {
	return r.Title
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
	}
}
