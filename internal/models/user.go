package models

import "time"

// User is a member of staff that can operate the store.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Name        string    `gorm:"column:nombre;size:100" json:"name"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	Active      bool      `gorm:"column:activo;not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName pins the table name.
func (User) TableName() string {
	return "usuarios"
}
