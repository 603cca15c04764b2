package model

import "time"

// User represents an authenticated user in the system. Email is the login
// identifier and is stored lower-cased.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string    `json:"name" gorm:"size:255"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsActive     bool      `json:"-" gorm:"not null"`
	IsStaff      bool      `json:"-" gorm:"not null"`
	IsSuperuser  bool      `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (u User) String() string {
	return u.Email
}
