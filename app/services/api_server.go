package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"KasirApp/app/receipt"
)

// APIServer serves the kasir UI and the JSON API the browser client and
// Android terminals talk to.
type APIServer struct {
	server *http.Server
	port   string

	sales    *SalesService
	printing *PrintService
	prefs    *PreferenceService
	users    *UserService
	whatsapp *WhatsAppService
	reports  *ReportService
	assets   *AssetCacheService
	sheets   *GoogleSheetsService
	logger   *LoggerService
	toko     receipt.Toko
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewAPIServer creates a new API server
func NewAPIServer(port string, sales *SalesService, printing *PrintService, prefs *PreferenceService,
	users *UserService, whatsapp *WhatsAppService, reports *ReportService, assets *AssetCacheService,
	sheets *GoogleSheetsService, logger *LoggerService, toko receipt.Toko) *APIServer {
	return &APIServer{
		port:     port,
		sales:    sales,
		printing: printing,
		prefs:    prefs,
		users:    users,
		whatsapp: whatsapp,
		reports:  reports,
		assets:   assets,
		sheets:   sheets,
		logger:   logger,
		toko:     toko,
	}
}

// Start starts the API server. Blocks until shutdown.
func (s *APIServer) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Nota data and rendering
	mux.HandleFunc("/api/penjualan/", s.handlePenjualan)

	// Offline sync
	mux.HandleFunc("/api/sync-transaksi", s.handleSyncTransaksi)
	mux.HandleFunc("/api/sync-pembeli", s.handleSyncPembeli)

	// Delivery
	mux.HandleFunc("/api/send-wa", s.handleSendWA)

	// Preferences
	mux.HandleFunc("/api/paper-size", s.handlePaperSize)

	// Reports
	mux.HandleFunc("/api/export/penjualan", s.handleExportPenjualan)
	mux.HandleFunc("/api/export/rekap", s.handleExportRekap)
	mux.HandleFunc("/api/rekap", s.handleRekap)

	// Google Sheets recap sync
	mux.HandleFunc("/api/sheets/config", s.handleSheetsConfig)
	mux.HandleFunc("/api/sheets/sync", s.handleSheetsSync)

	// Accounts
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/register", s.handleRegister)
	mux.HandleFunc("/api/logout", s.handleLogout)

	// Client-side error reporting
	mux.HandleFunc("/api/client-log", s.handleClientLog)

	// Offline-capable static assets
	mux.HandleFunc("/service-worker.js", s.handleServiceWorker)
	mux.HandleFunc("/pwa.js", s.handleInstallPrompt)
	mux.HandleFunc("/static/", s.handleStatic)

	s.server = &http.Server{
		Addr:         s.port,
		Handler:      s.corsMiddleware(s.loggingMiddleware(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("[API] Server starting on port %s", s.port)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the API server.
func (s *APIServer) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("[API] Server stopping...")
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[API] %s %s from %s in %v", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

func (s *APIServer) sendJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "healthy",
			"time":   time.Now(),
		},
	})
}

// handlePenjualan routes /api/penjualan/{id} and its sub-resources:
//
//	GET  /api/penjualan/{id}            nota data
//	GET  /api/penjualan/{id}/nota       rendered nota (?format=html|text)
//	POST /api/penjualan/{id}/print      print dispatch for the client env
func (s *APIServer) handlePenjualan(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/penjualan/")
	parts := strings.SplitN(rest, "/", 2)
	clientTxID := parts[0]
	if clientTxID == "" {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "missing transaction id"})
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	header, items, toko, err := s.sales.GetDetail(clientTxID)
	if err != nil {
		s.sendJSON(w, http.StatusNotFound, APIResponse{Error: err.Error()})
		return
	}
	if toko.Nama == "" {
		toko = s.toko
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
			return
		}
		s.sendJSON(w, http.StatusOK, APIResponse{
			Success: true,
			Data: map[string]interface{}{
				"header": header,
				"items":  items,
				"toko":   toko,
			},
		})

	case "nota":
		if r.Method != http.MethodGet {
			s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
			return
		}
		switch r.URL.Query().Get("format") {
		case "html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, receipt.RenderHTML(header, items, toko, s.prefs))
		case "text", "":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, receipt.RenderText(header, items, toko, s.prefs))
		case "escpos":
			raw, err := s.printing.RenderPrinterBytes(header, items, toko)
			if err != nil {
				s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, base64.StdEncoding.EncodeToString(raw))
		default:
			s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "unknown format"})
		}

	case "print":
		if r.Method != http.MethodPost {
			s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
			return
		}
		var env ClientEnv
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
			return
		}
		dispatch, err := s.printing.PrintNota(header, items, toko, env)
		if err != nil {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
			return
		}
		s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: dispatch})

	default:
		s.sendJSON(w, http.StatusNotFound, APIResponse{Error: "not found"})
	}
}

func (s *APIServer) handleSyncTransaksi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var reqs []SyncTransaksiRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	results := make([]SyncResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, s.sales.SyncTransaksi(req))
	}

	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

func (s *APIServer) handleSyncPembeli(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		Nama   string `json:"nama"`
		NoHP   string `json:"no_hp"`
		Alamat string `json:"alamat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	pembeli, err := s.sales.SyncPembeli(req.Nama, req.NoHP, req.Alamat)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: pembeli})
}

func (s *APIServer) handleSendWA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		NoHP       string `json:"no_hp"`
		ClientTxID string `json:"client_tx_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	header, items, toko, err := s.sales.GetDetail(req.ClientTxID)
	if err != nil {
		s.sendJSON(w, http.StatusNotFound, APIResponse{Error: err.Error()})
		return
	}
	if toko.Nama == "" {
		toko = s.toko
	}

	notaText := receipt.RenderText(header, items, toko, s.prefs)
	if err := s.whatsapp.SendNota(req.NoHP, notaText); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Nota terkirim"})
}

func (s *APIServer) handlePaperSize(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.sendJSON(w, http.StatusOK, APIResponse{
			Success: true,
			Data:    map[string]int{"paper_size": s.prefs.PaperWidth()},
		})

	case http.MethodPost:
		var req struct {
			PaperSize int `json:"paper_size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
			return
		}
		if err := s.prefs.SetPaperWidth(req.PaperSize); err != nil {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
			return
		}
		s.sendJSON(w, http.StatusOK, APIResponse{Success: true})

	default:
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
	}
}

func (s *APIServer) dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", v)
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", v)
		}
		to = parsed
	}
	return from, to, nil
}

func (s *APIServer) handleRekap(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.dateRange(r)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	rows, err := s.sales.Recap(from, to)
	if err != nil {
		s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
		return
	}
	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: rows})
}

func (s *APIServer) handleExportPenjualan(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.dateRange(r)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	data, err := s.reports.ExportPenjualan(from, to)
	if err != nil {
		s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
		return
	}
	s.sendWorkbook(w, "penjualan.xlsx", data)
}

func (s *APIServer) handleExportRekap(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.dateRange(r)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	data, err := s.reports.ExportRecap(from, to)
	if err != nil {
		s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
		return
	}
	s.sendWorkbook(w, "rekap.xlsx", data)
}

func (s *APIServer) sendWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func (s *APIServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	token, user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.sendJSON(w, http.StatusUnauthorized, APIResponse{Error: err.Error()})
		} else {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
		}
		return
	}

	s.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"token": token,
			"user":  user,
		},
	})
}

func (s *APIServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		Nama     string `json:"nama"`
		Username string `json:"username"`
		Password string `json:"password"`
		TokoID   uint   `json:"toko_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	user, err := s.users.Register(req.Nama, req.Username, req.Password, req.TokoID)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	s.sendJSON(w, http.StatusCreated, APIResponse{Success: true, Data: user})
}

func (s *APIServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token != "" {
		s.users.Logout(token)
	}
	s.sendJSON(w, http.StatusOK, APIResponse{Success: true})
}

func (s *APIServer) handleClientLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		Message string `json:"message"`
		Stack   string `json:"stack"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
		return
	}

	if s.logger != nil {
		s.logger.LogClientError(req.Message, req.Stack, r.UserAgent())
	}
	s.sendJSON(w, http.StatusOK, APIResponse{Success: true})
}

// handleSheetsConfig reads and updates the recap sync settings. The
// service account key is accepted on writes but never echoed back.
func (s *APIServer) handleSheetsConfig(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		s.sendJSON(w, http.StatusServiceUnavailable, APIResponse{Error: "sheets sync not available"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		config, err := s.sheets.GetConfig()
		if err != nil {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
			return
		}
		s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: config})

	case http.MethodPost, http.MethodPut:
		var req struct {
			IsEnabled     *bool   `json:"is_enabled"`
			SpreadsheetID *string `json:"spreadsheet_id"`
			SheetName     *string `json:"sheet_name"`
			PrivateKey    *string `json:"private_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: "invalid request body"})
			return
		}

		config, err := s.sheets.GetConfig()
		if err != nil {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
			return
		}
		if req.IsEnabled != nil {
			config.IsEnabled = *req.IsEnabled
		}
		if req.SpreadsheetID != nil {
			config.SpreadsheetID = *req.SpreadsheetID
		}
		if req.SheetName != nil {
			config.SheetName = *req.SheetName
		}
		if req.PrivateKey != nil {
			config.PrivateKey = *req.PrivateKey
		}
		if err := s.sheets.SaveConfig(config); err != nil {
			s.sendJSON(w, http.StatusInternalServerError, APIResponse{Error: err.Error()})
			return
		}
		s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: config})

	default:
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
	}
}

func (s *APIServer) handleSheetsSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSON(w, http.StatusMethodNotAllowed, APIResponse{Error: "method not allowed"})
		return
	}
	if s.sheets == nil {
		s.sendJSON(w, http.StatusServiceUnavailable, APIResponse{Error: "sheets sync not available"})
		return
	}

	from, to, err := s.dateRange(r)
	if err != nil {
		s.sendJSON(w, http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	if err := s.sheets.SyncRecap(r.Context(), from, to); err != nil {
		s.sendJSON(w, http.StatusBadGateway, APIResponse{Error: err.Error()})
		return
	}
	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Rekap tersinkron"})
}

func (s *APIServer) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	js, err := s.assets.ServiceWorkerJS()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(js)
}

func (s *APIServer) handleInstallPrompt(w http.ResponseWriter, r *http.Request) {
	js, err := s.assets.InstallPromptJS()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(js)
}

func (s *APIServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	data, err := s.assets.Fetch(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(r.URL.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
