package services

import (
	"fmt"
	"strconv"

	"KasirApp/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// PaperSizeKey is the preference key holding the receipt width in
	// characters, stored as a string ("32" or "42").
	PaperSizeKey = "paperSize"

	// DefaultPaperWidth is used when no preference is stored or the stored
	// value is not a number.
	DefaultPaperWidth = 32
)

// PreferenceService reads and writes key-value preferences on the local
// database. It implements receipt.WidthSource so renderers always see the
// current paper size without restarting.
type PreferenceService struct {
	db     *gorm.DB
	logger *LoggerService
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(db *gorm.DB, logger *LoggerService) *PreferenceService {
	return &PreferenceService{db: db, logger: logger}
}

// Get returns the stored value for key, or defaultValue when absent.
func (s *PreferenceService) Get(key, defaultValue string) string {
	var pref models.Preference
	err := s.db.First(&pref, "key = ?", key).Error
	if err != nil {
		return defaultValue
	}
	return pref.Value
}

// Set stores a value for key, overwriting any previous value.
func (s *PreferenceService) Set(key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// PaperWidth returns the receipt width in characters. The stored value is
// passed through as-is when it parses as an integer; only an unparseable
// or missing value falls back to the default.
func (s *PreferenceService) PaperWidth() int {
	raw := s.Get(PaperSizeKey, "")
	if raw == "" {
		return DefaultPaperWidth
	}
	width, err := strconv.Atoi(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.LogWarning("Invalid paper size preference, using default", raw)
		}
		return DefaultPaperWidth
	}
	return width
}

// SetPaperWidth stores a new paper size preference.
func (s *PreferenceService) SetPaperWidth(width int) error {
	return s.Set(PaperSizeKey, strconv.Itoa(width))
}
