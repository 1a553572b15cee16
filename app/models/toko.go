package models

import (
	"time"

	"gorm.io/gorm"
)

// Toko is a registered store. Its name and address head every printed nota.
type Toko struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Nama      string         `gorm:"not null" json:"nama"`
	Kode      string         `gorm:"uniqueIndex;not null" json:"kode"`
	Alamat    string         `json:"alamat"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// User is a cashier or admin account belonging to one store.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nama         string    `gorm:"not null" json:"nama"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:kasir" json:"role"` // "admin", "kasir"
	TokoID       uint      `json:"toko_id"`
	Toko         *Toko     `gorm:"foreignKey:TokoID" json:"toko,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
