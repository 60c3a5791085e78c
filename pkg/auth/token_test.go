package auth

import (
	"strings"
	"testing"
)

func TestPasteToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain token", "s3cret\n", "s3cret", false},
		{"surrounding whitespace trimmed", "  s3cret  \n", "s3cret", false},
		{"empty line rejected", "\n", "", true},
		{"whitespace-only rejected", "   \n", "", true},
		{"no input rejected", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PasteToken(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PasteToken: %v", err)
			}
			if got != tt.want {
				t.Errorf("PasteToken = %q, want %q", got, tt.want)
			}
		})
	}
}
