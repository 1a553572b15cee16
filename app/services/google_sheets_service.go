package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"KasirApp/app/models"
	"KasirApp/app/security"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"
)

// GoogleSheetsService pushes the daily recap to a spreadsheet the store
// owner can open from anywhere.
type GoogleSheetsService struct {
	db     *gorm.DB
	sales  *SalesService
	logger *LoggerService
}

// NewGoogleSheetsService creates a new sheets sync service
func NewGoogleSheetsService(db *gorm.DB, sales *SalesService, logger *LoggerService) *GoogleSheetsService {
	return &GoogleSheetsService{db: db, sales: sales, logger: logger}
}

// GetConfig retrieves the sheets configuration, creating a disabled
// default on first access. The service account key is decrypted before
// returning.
func (s *GoogleSheetsService) GetConfig() (*models.SheetsConfig, error) {
	var config models.SheetsConfig
	err := s.db.First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config = models.SheetsConfig{
				IsEnabled:      false,
				SheetName:      "Rekap",
				LastSyncStatus: "pending",
			}
			if err := s.db.Create(&config).Error; err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return &config, nil
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	if config.PrivateKey != "" {
		decrypted, derr := security.Decrypt(config.PrivateKey)
		if derr == nil {
			config.PrivateKey = decrypted
		}
	}
	return &config, nil
}

// SaveConfig stores the sheets configuration, encrypting the service
// account key at rest.
func (s *GoogleSheetsService) SaveConfig(config *models.SheetsConfig) error {
	if config.PrivateKey != "" {
		encrypted, err := security.EncryptIfNeeded(config.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt private key: %w", err)
		}
		config.PrivateKey = encrypted
	}

	if config.ID == 0 {
		return s.db.Create(config).Error
	}
	return s.db.Save(config).Error
}

// TestConnection checks that the credentials can open the spreadsheet.
func (s *GoogleSheetsService) TestConnection(ctx context.Context, config *models.SheetsConfig) error {
	if config.PrivateKey == "" || config.SpreadsheetID == "" {
		return fmt.Errorf("missing credentials or spreadsheet ID")
	}

	srv, err := s.newSheetsClient(ctx, config)
	if err != nil {
		return err
	}

	if _, err := srv.Spreadsheets.Get(config.SpreadsheetID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

// SyncRecap replaces the recap sheet contents with the per-day recap of
// the given range and records the outcome on the config row.
func (s *GoogleSheetsService) SyncRecap(ctx context.Context, from, to time.Time) error {
	config, err := s.GetConfig()
	if err != nil {
		return err
	}
	if !config.IsEnabled {
		return fmt.Errorf("sheets sync is disabled")
	}

	rows, err := s.sales.Recap(from, to)
	if err != nil {
		s.recordSyncResult(config, err)
		return err
	}

	values := [][]interface{}{
		{"Tanggal", "Transaksi", "Omzet", "Laba"},
	}
	for _, r := range rows {
		values = append(values, []interface{}{r.Tanggal, r.Transaksi, r.Omzet, r.Laba})
	}

	err = s.writeSheet(ctx, config, values)
	s.recordSyncResult(config, err)
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.LogInfo("Recap synced to Google Sheets", config.SpreadsheetID)
	}
	return nil
}

func (s *GoogleSheetsService) writeSheet(ctx context.Context, config *models.SheetsConfig, values [][]interface{}) error {
	srv, err := s.newSheetsClient(ctx, config)
	if err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:Z", config.SheetName)
	if _, err := srv.Spreadsheets.Values.Clear(config.SpreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", config.SheetName)
	_, err = srv.Spreadsheets.Values.Update(config.SpreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet: %w", err)
	}
	return nil
}

func (s *GoogleSheetsService) newSheetsClient(ctx context.Context, config *models.SheetsConfig) (*sheets.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(config.PrivateKey), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (s *GoogleSheetsService) recordSyncResult(config *models.SheetsConfig, syncErr error) {
	now := time.Now().UTC()
	config.LastSyncAt = &now
	if syncErr != nil {
		config.LastSyncStatus = "error"
		config.LastSyncError = syncErr.Error()
	} else {
		config.LastSyncStatus = "success"
		config.LastSyncError = ""
	}

	s.db.Model(&models.SheetsConfig{}).Where("id = ?", config.ID).Updates(map[string]interface{}{
		"last_sync_at":     config.LastSyncAt,
		"last_sync_status": config.LastSyncStatus,
		"last_sync_error":  config.LastSyncError,
	})
}
