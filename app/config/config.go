package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"KasirApp/app/security"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// HTTP server settings
	Server ServerConfig `json:"server"`

	// Sales database settings
	Database DatabaseConfig `json:"database"`

	// Store information printed on every nota
	Toko TokoConfig `json:"toko"`

	// Printer and dispatch settings
	Printer PrinterConfig `json:"printer"`

	// WhatsApp gateway settings
	WhatsApp WhatsAppConfig `json:"whatsapp"`

	// Offline asset cache settings
	Cache CacheConfig `json:"cache"`

	// First run flag
	FirstRun bool `json:"first_run"`
}

// ServerConfig holds HTTP and WebSocket server settings
type ServerConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	WebSocketPort int    `json:"websocket_port"`
}

// DatabaseConfig holds sales database connection settings
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// TokoConfig holds the store identity used on receipts
type TokoConfig struct {
	Nama   string `json:"nama"`
	Kode   string `json:"kode"`
	Alamat string `json:"alamat"`
}

// PrinterConfig holds receipt printing settings
type PrinterConfig struct {
	// Android package the raw-bytes intent targets
	IntentPackage string `json:"intent_package"`
	// Append a QR code with the nota id after the footer
	QRFooter bool `json:"qr_footer"`
	// Paper width in characters used when no preference is stored
	DefaultPaperWidth int `json:"default_paper_width"`
}

// WhatsAppConfig holds the nota delivery gateway settings
type WhatsAppConfig struct {
	GatewayURL string `json:"gateway_url"`
	APIKey     string `json:"api_key"`
}

// CacheConfig holds the offline asset cache settings
type CacheConfig struct {
	StaticDir string `json:"static_dir"`
	CacheDir  string `json:"cache_dir"`
	Version   string `json:"version"`
}

// GetConfigPath returns the path to the config file inside the KasirApp
// data directory, creating the directory if needed.
func GetConfigPath() (string, error) {
	baseDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config")
	}

	configDir := filepath.Join(baseDir, "KasirApp")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads configuration from config.json and decrypts sensitive fields
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	if err := cfg.decryptSensitiveFields(); err != nil {
		return nil, fmt.Errorf("could not decrypt sensitive fields: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to config.json after encrypting sensitive fields
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Encrypt a copy so the caller keeps plaintext values
	cfgCopy := *cfg
	if err := cfgCopy.encryptSensitiveFields(); err != nil {
		return fmt.Errorf("could not encrypt sensitive fields: %w", err)
	}

	data, err := json.MarshalIndent(&cfgCopy, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// ConfigExists checks if the config file exists
func ConfigExists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateDefaultConfig creates and saves a default configuration file
func CreateDefaultConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			WebSocketPort: 8081,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "kasirapp",
			Username: "postgres",
			Password: "",
			SSLMode:  "disable",
		},
		Toko: TokoConfig{
			Nama:   "TOKO",
			Kode:   "",
			Alamat: "",
		},
		Printer: PrinterConfig{
			IntentPackage:     "ru.a402d.rawbtprinter",
			QRFooter:          false,
			DefaultPaperWidth: 32,
		},
		WhatsApp: WhatsAppConfig{
			GatewayURL: "",
			APIKey:     "",
		},
		Cache: CacheConfig{
			StaticDir: "static",
			CacheDir:  "",
			Version:   "kasir-cache-v1",
		},
		FirstRun: true,
	}

	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MarkSetupComplete marks the first run as complete
func MarkSetupComplete() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	cfg.FirstRun = false
	return SaveConfig(cfg)
}

// encryptSensitiveFields encrypts sensitive configuration fields
func (cfg *AppConfig) encryptSensitiveFields() error {
	var err error

	if cfg.Database.Password != "" {
		cfg.Database.Password, err = security.Encrypt(cfg.Database.Password)
		if err != nil {
			return fmt.Errorf("could not encrypt database password: %w", err)
		}
	}

	if cfg.WhatsApp.APIKey != "" {
		cfg.WhatsApp.APIKey, err = security.Encrypt(cfg.WhatsApp.APIKey)
		if err != nil {
			return fmt.Errorf("could not encrypt WhatsApp API key: %w", err)
		}
	}

	return nil
}

// decryptSensitiveFields decrypts sensitive configuration fields.
// A field that fails to decrypt is assumed to be plaintext and kept as-is.
func (cfg *AppConfig) decryptSensitiveFields() error {
	if cfg.Database.Password != "" {
		decrypted, err := security.Decrypt(cfg.Database.Password)
		if err != nil {
			decrypted = cfg.Database.Password
		}
		cfg.Database.Password = decrypted
	}

	if cfg.WhatsApp.APIKey != "" {
		decrypted, err := security.Decrypt(cfg.WhatsApp.APIKey)
		if err != nil {
			decrypted = cfg.WhatsApp.APIKey
		}
		cfg.WhatsApp.APIKey = decrypted
	}

	return nil
}
