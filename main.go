package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"KasirApp/app/config"
	"KasirApp/app/database"
	"KasirApp/app/receipt"
	"KasirApp/app/services"
	"KasirApp/app/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for development overrides
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	logger := services.NewLoggerService()
	defer logger.Close()
	defer logger.RecoverPanic()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.LogWarning("No config found, creating default", err.Error())
		cfg, err = config.CreateDefaultConfig()
		if err != nil {
			logger.LogFatal("Could not create default config", err)
		}
	}

	applyDatabaseEnv(cfg)

	if err := database.Initialize(); err != nil {
		logger.LogFatal("Could not connect to sales database", err)
	}
	defer database.Close()

	localDBPath, err := localDatabasePath()
	if err != nil {
		logger.LogFatal("Could not resolve local database path", err)
	}
	if err := database.InitializeLocalDB(localDBPath); err != nil {
		logger.LogFatal("Could not open local database", err)
	}

	db := database.GetDB()
	localDB := database.GetLocalDB()

	prefs := services.NewPreferenceService(localDB, logger)
	detector := services.NewPlatformDetector(logger)
	sales := services.NewSalesService(db, logger)
	reports := services.NewReportService(sales, logger)
	users := services.NewUserService(db, logger)
	whatsapp := services.NewWhatsAppService(cfg.WhatsApp.GatewayURL, cfg.WhatsApp.APIKey, logger)
	sheets := services.NewGoogleSheetsService(db, sales, logger)

	wsServer := websocket.NewServer(fmt.Sprintf(":%d", cfg.Server.WebSocketPort))
	go func() {
		defer logger.RecoverPanic()
		if err := wsServer.Start(); err != nil {
			logger.LogError("WebSocket server stopped", err)
		}
	}()
	defer wsServer.Stop()

	printing := services.NewPrintService(detector, prefs, logger, wsServer,
		cfg.Printer.IntentPackage, cfg.Printer.QRFooter)

	assets := services.NewAssetCacheService(cfg.Cache.StaticDir, cfg.Cache.CacheDir, cfg.Cache.Version, logger)
	if err := assets.Install(); err != nil {
		logger.LogWarning("Asset cache install failed, serving live files", err.Error())
	} else if err := assets.Activate(); err != nil {
		logger.LogWarning("Asset cache activation failed", err.Error())
	}

	toko := receipt.Toko{Nama: cfg.Toko.Nama, Alamat: cfg.Toko.Alamat}
	apiServer := services.NewAPIServer(fmt.Sprintf(":%d", cfg.Server.Port),
		sales, printing, prefs, users, whatsapp, reports, assets, sheets, logger, toko)

	go func() {
		defer logger.RecoverPanic()
		if err := apiServer.Start(); err != nil {
			logger.LogFatal("API server failed", err)
		}
	}()

	logger.LogInfo("KasirApp started", fmt.Sprintf("API :%d, WebSocket :%d", cfg.Server.Port, cfg.Server.WebSocketPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.LogInfo("Shutting down")
	if err := apiServer.Stop(); err != nil {
		logger.LogError("API server shutdown failed", err)
	}
}

// applyDatabaseEnv exports the configured database settings as the
// environment variables the connection layer reads, without clobbering
// values already set by the operator.
func applyDatabaseEnv(cfg *config.AppConfig) {
	setIfEmpty("DB_HOST", cfg.Database.Host)
	setIfEmpty("DB_PORT", fmt.Sprintf("%d", cfg.Database.Port))
	setIfEmpty("DB_NAME", cfg.Database.Database)
	setIfEmpty("DB_USER", cfg.Database.Username)
	setIfEmpty("DB_PASSWORD", cfg.Database.Password)
	setIfEmpty("DB_SSLMODE", cfg.Database.SSLMode)
}

func setIfEmpty(key, value string) {
	if os.Getenv(key) == "" && value != "" {
		os.Setenv(key, value)
	}
}

func localDatabasePath() (string, error) {
	baseDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(baseDir, "KasirApp", "local.db"), nil
}
