package models

import "time"

// User represents an account managed by the API.
// PasswordHash holds the plaintext password only between request binding and
// hashing; everything persisted is a bcrypt hash.
type User struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null" validate:"required,min=3,max=50"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null" validate:"required,email"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(50);not null" validate:"required,max=50"`
	LastName     string    `json:"lastName" gorm:"type:varchar(50);not null" validate:"required,max=50"`
	PasswordHash string    `json:"password" gorm:"column:password_hash;type:varchar(255);not null" validate:"required,min=6,max=72"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserLoginModel is the credential pair posted to the token endpoint.
type UserLoginModel struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
