// Package models contains data structures for the application's domain models.
package models

// User represents a registered account. Email is the login identity.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string `gorm:"column:password_hash;size:100;not null" json:"-"`
	Name     string `gorm:"size:100;not null" json:"name"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`
}

// TableName pins the table to "users".
func (User) TableName() string {
	return "users"
}
