package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		noHP string
		ok   bool
	}{
		{"6281234567890", true},
		{"6281234567", true},
		{"62812345678901234", false}, // too long
		{"081234567890", false},      // local format
		{"+6281234567890", false},
		{"6281234", false}, // too short
		{"62abc1234567", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidatePhone(tt.noHP)
		if tt.ok && err != nil {
			t.Errorf("ValidatePhone(%q) = %v, want ok", tt.noHP, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ValidatePhone(%q) = nil, want error", tt.noHP)
		}
	}
}

func TestSendNotaPostsToGateway(t *testing.T) {
	var got map[string]string
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewWhatsAppService(server.URL, "secret-key", nil)
	if err := svc.SendNota("6281234567890", "Warung Iin\nTOTAL 20000"); err != nil {
		t.Fatalf("SendNota: %v", err)
	}

	if got["target"] != "6281234567890" {
		t.Errorf("target = %q", got["target"])
	}
	if got["message"] != "Warung Iin\nTOTAL 20000" {
		t.Errorf("message = %q", got["message"])
	}
	if auth != "secret-key" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestSendNotaRejectsInvalidPhoneWithoutCallingGateway(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewWhatsAppService(server.URL, "", nil)
	if err := svc.SendNota("081234567890", "nota"); err == nil {
		t.Error("expected validation error")
	}
	if called {
		t.Error("gateway must not be called for invalid numbers")
	}
}

func TestSendNotaGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewWhatsAppService(server.URL, "", nil)
	if err := svc.SendNota("6281234567890", "nota"); err == nil {
		t.Error("expected error for gateway failure")
	}
}

func TestSendNotaUnconfiguredGateway(t *testing.T) {
	svc := NewWhatsAppService("", "", nil)
	if err := svc.SendNota("6281234567890", "nota"); err == nil {
		t.Error("expected error when gateway is not configured")
	}
}
