package cmd

import (
	"os"
	"testing"
)

func TestValidateAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"port only", ":8000", false},
		{"localhost", "localhost:8000", false},
		{"ipv4", "127.0.0.1:8000", false},
		{"ipv6", "[::1]:8000", false},
		{"hostname", "api.internal:8000", false},
		{"port zero auto-assign", ":0", false},
		{"missing port", "localhost", true},
		{"empty", "", true},
		{"non-numeric port", ":http", true},
		{"port out of range", ":70000", true},
		{"whitespace host", "bad host:8000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddr(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAddr(%q) = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestParseServeAddr(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"default", []string{"answerdesk"}, ":8000", false},
		{"positional", []string{"answerdesk", ":9000"}, ":9000", false},
		{"flag", []string{"answerdesk", "--addr", "127.0.0.1:9000"}, "127.0.0.1:9000", false},
		{"single dash flag", []string{"answerdesk", "-addr", ":9001"}, ":9001", false},
		{"invalid positional", []string{"answerdesk", "no-port"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			got, err := parseServeAddr(":8000")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseServeAddr() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseServeAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}
