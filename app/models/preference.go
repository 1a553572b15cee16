package models

import "time"

// Preference is a single key-value user preference on the local database.
// The paper size lives here as a string-encoded integer ("32" or "42"),
// exactly as the browser stores it.
type Preference struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SheetsConfig holds the optional Google Sheets recap sync settings.
type SheetsConfig struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	IsEnabled      bool       `json:"is_enabled"`
	SpreadsheetID  string     `json:"spreadsheet_id"`
	SheetName      string     `gorm:"default:Rekap" json:"sheet_name"`
	PrivateKey     string     `gorm:"type:text" json:"-"` // service account JSON, encrypted at rest
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus string     `gorm:"default:pending" json:"last_sync_status"` // "pending", "success", "error"
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
