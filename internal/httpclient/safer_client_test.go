package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/promptlab/promptlab/internal/util"
)

func TestNewSaferClientDefaults(t *testing.T) {
	client := NewSaferClient(30 * time.Second)

	if client.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", client.Timeout)
	}
	if client.maxRedirects != 10 {
		t.Errorf("Expected maxRedirects 10, got %d", client.maxRedirects)
	}
	if !client.blockPrivateIP {
		t.Error("Expected blockPrivateIP to be true by default")
	}
}

func TestValidateURL(t *testing.T) {
	client := NewSaferClient(30 * time.Second)

	tests := []struct {
		name        string
		url         string
		shouldErr   bool
		errContains string
	}{
		{"valid HTTPS URL", "https://example.com/path", false, ""},
		{"valid HTTP URL", "http://example.com", false, ""},
		{"file scheme blocked", "file:///etc/passwd", true, "scheme"},
		{"gopher scheme blocked", "gopher://example.com", true, "scheme"},
		{"localhost blocked", "http://localhost/admin", true, "localhost"},
		{"127.0.0.1 blocked", "http://127.0.0.1/", true, "private IP"},
		{"10.x private network blocked", "http://10.0.0.1/", true, "private IP"},
		{"link-local metadata blocked", "http://169.254.169.254/metadata", true, "private IP"},
		{"credential injection blocked", "http://evil.com@localhost/", true, "@"},
		{"empty hostname", "http:///path", true, "hostname"},
		{"public IP allowed", "http://8.8.8.8/", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)

			if tt.shouldErr && err == nil {
				t.Errorf("Expected error for %s, got nil", tt.url)
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("Expected no error for %s, got: %v", tt.url, err)
			}
			if tt.shouldErr && err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error to contain %q, got: %v", tt.errContains, err)
			}
		})
	}
}

func TestValidateURLLocalEndpointAllowed(t *testing.T) {
	// The Ollama client runs with private IP blocking off
	client := NewSaferClientWithOptions(5*time.Second, SaferClientOptions{
		BlockPrivateIP: util.Ptr(false),
	})

	if _, err := client.ValidateURL("http://localhost:11434/api/tags"); err != nil {
		t.Errorf("localhost should be allowed when blocking is off, got: %v", err)
	}
	if _, err := client.ValidateURL("file:///etc/passwd"); err == nil {
		t.Error("scheme allow-list must still apply with blocking off")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip        string
		isPrivate bool
	}{
		{"10.0.0.1", true},
		{"192.168.1.1", true},
		{"172.16.0.1", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"::1", true},
		{"fe80::1", true},
		{"fc00::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("Failed to parse IP: %s", tt.ip)
			}
			if got := isPrivateIP(ip); got != tt.isPrivate {
				t.Errorf("isPrivateIP(%s) = %v, expected %v", tt.ip, got, tt.isPrivate)
			}
		})
	}
}

func TestMaxRedirects(t *testing.T) {
	client := NewSaferClientWithOptions(5*time.Second, SaferClientOptions{
		BlockPrivateIP: util.Ptr(false),
	})

	// Server with infinite redirects
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("Expected error for too many redirects, got nil")
	}
	if !strings.Contains(err.Error(), "redirects") {
		t.Errorf("Expected redirect limit error, got: %v", err)
	}
}

func TestSaferClientOptions(t *testing.T) {
	client := NewSaferClientWithOptions(30*time.Second, SaferClientOptions{
		AllowedSchemes: []string{"https"},
		MaxRedirects:   util.Ptr(5),
		BlockPrivateIP: util.Ptr(false),
	})

	if client.maxRedirects != 5 {
		t.Errorf("Expected maxRedirects 5, got %d", client.maxRedirects)
	}
	if client.blockPrivateIP {
		t.Error("Expected blockPrivateIP to be false")
	}

	// HTTP is outside the allow-list
	if _, err := client.ValidateURL("http://example.com"); err == nil {
		t.Error("Expected HTTP to be blocked with HTTPS-only config")
	}
}

func TestDoBlocksPrivateTargets(t *testing.T) {
	client := NewSaferClient(5 * time.Second)

	req, err := http.NewRequest("GET", "http://localhost/", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("Expected error for localhost request, got nil")
	}
	if !strings.Contains(err.Error(), "SSRF protection") {
		t.Errorf("Expected SSRF protection error, got: %v", err)
	}
}
