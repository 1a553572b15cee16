package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"KasirApp/app/database"
	"KasirApp/app/receipt"
)

func newTestAPIServer(t *testing.T) *APIServer {
	t.Helper()
	db, err := database.OpenLocalDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("OpenLocalDB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	sales := NewSalesService(db, nil)
	prefs := NewPreferenceService(db, nil)
	printing := NewPrintService(NewPlatformDetector(nil), prefs, nil, nil, "", false)
	users := NewUserService(db, nil)
	reports := NewReportService(sales, nil)
	sheets := NewGoogleSheetsService(db, sales, nil)

	toko := receipt.Toko{Nama: "Warung Iin", Alamat: "Jl. Mawar No. 12"}
	return NewAPIServer(":0", sales, printing, prefs, users, nil, reports, nil, sheets, nil, toko)
}

func syncOneSale(t *testing.T, s *APIServer) {
	t.Helper()
	body, _ := json.Marshal([]SyncTransaksiRequest{sampleSync("abc12345-xyz")})
	req := httptest.NewRequest(http.MethodPost, "/api/sync-transaksi", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleSyncTransaksi(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSyncEndpointReportsDuplicates(t *testing.T) {
	s := newTestAPIServer(t)
	syncOneSale(t, s)

	body, _ := json.Marshal([]SyncTransaksiRequest{sampleSync("abc12345-xyz")})
	req := httptest.NewRequest(http.MethodPost, "/api/sync-transaksi", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleSyncTransaksi(rec, req)

	var resp struct {
		Success bool         `json:"success"`
		Data    []SyncResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Status != "duplicate" {
		t.Errorf("results = %+v, want one duplicate", resp.Data)
	}
}

func TestPenjualanEndpointReturnsNotaData(t *testing.T) {
	s := newTestAPIServer(t)
	syncOneSale(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/penjualan/abc12345-xyz", nil)
	rec := httptest.NewRecorder()
	s.handlePenjualan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Header receipt.Header `json:"header"`
			Items  []receipt.Item `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Header.ClientTxID != "abc12345-xyz" {
		t.Errorf("ClientTxID = %q", resp.Data.Header.ClientTxID)
	}
	if len(resp.Data.Items) != 1 {
		t.Errorf("items = %+v", resp.Data.Items)
	}
}

func TestPenjualanEndpointUnknownID(t *testing.T) {
	s := newTestAPIServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/penjualan/nope", nil)
	rec := httptest.NewRecorder()
	s.handlePenjualan(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestNotaEndpointRendersText(t *testing.T) {
	s := newTestAPIServer(t)
	syncOneSale(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/penjualan/abc12345-xyz/nota?format=text", nil)
	rec := httptest.NewRecorder()
	s.handlePenjualan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "TX-ABC12345") {
		t.Errorf("nota missing id:\n%s", body)
	}
	if !strings.Contains(body, "Warung Iin") {
		t.Error("nota missing store name from fallback toko")
	}
}

func TestNotaEndpointRendersEscposBase64(t *testing.T) {
	s := newTestAPIServer(t)
	syncOneSale(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/penjualan/abc12345-xyz/nota?format=escpos", nil)
	rec := httptest.NewRecorder()
	s.handlePenjualan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	raw, err := base64.StdEncoding.DecodeString(rec.Body.String())
	if err != nil {
		t.Fatalf("body is not base64: %v", err)
	}
	// Stream starts with the initialize sequence (ESC @).
	if len(raw) < 2 || raw[0] != 0x1B || raw[1] != 0x40 {
		t.Errorf("decoded stream does not start with ESC @: % X", raw[:min(len(raw), 4)])
	}
}

func TestPrintEndpointDispatchesByPlatform(t *testing.T) {
	s := newTestAPIServer(t)
	syncOneSale(t, s)

	post := func(env ClientEnv) *PrintDispatch {
		t.Helper()
		body, _ := json.Marshal(env)
		req := httptest.NewRequest(http.MethodPost, "/api/penjualan/abc12345-xyz/print", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		s.handlePenjualan(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data *PrintDispatch `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp.Data
	}

	if d := post(handheldEnv); d.Target != PrintTargetRawBT {
		t.Errorf("handheld Target = %q", d.Target)
	}
	if d := post(desktopEnv); d.Target != PrintTargetBrowser {
		t.Errorf("desktop Target = %q", d.Target)
	}
}

func TestPaperSizeEndpointRoundtrip(t *testing.T) {
	s := newTestAPIServer(t)

	body, _ := json.Marshal(map[string]int{"paper_size": 42})
	req := httptest.NewRequest(http.MethodPost, "/api/paper-size", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handlePaperSize(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/paper-size", nil)
	rec = httptest.NewRecorder()
	s.handlePaperSize(rec, req)

	var resp struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["paper_size"] != 42 {
		t.Errorf("paper_size = %d, want 42", resp.Data["paper_size"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestAPIServer(t)

	regBody, _ := json.Marshal(map[string]interface{}{
		"nama": "Iin", "username": "iin", "password": "rahasia1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(regBody))
	rec := httptest.NewRecorder()
	s.handleRegister(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}

	loginBody, _ := json.Marshal(map[string]string{"username": "iin", "password": "rahasia1"})
	req = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(loginBody))
	rec = httptest.NewRecorder()
	s.handleLogin(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}

	badBody, _ := json.Marshal(map[string]string{"username": "iin", "password": "salah"})
	req = httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(badBody))
	rec = httptest.NewRecorder()
	s.handleLogin(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}
