package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+972541234567",
			region: "US",
			want:   "+972541234567",
		},
		{
			name:   "with spaces",
			input:  "+972 54 123 4567",
			region: "US",
			want:   "+972541234567",
		},
		{
			name:   "with parentheses",
			input:  "+1 (212) 555-1234",
			region: "IL",
			want:   "+12125551234",
		},
		{
			name:   "national format in default region",
			input:  "(212) 555-1234",
			region: "US",
			want:   "+12125551234",
		},
		{
			name:   "national trunk prefix",
			input:  "054-123-4567",
			region: "IL",
			want:   "+972541234567",
		},
		{
			name:   "lowercase region",
			input:  "212 555 1234",
			region: "us",
			want:   "+12125551234",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +972541234567  ",
			region: "US",
			want:   "+972541234567",
		},
		{
			name:   "empty string",
			input:  "",
			region: "US",
			want:   "",
		},
		{
			name:   "letters only",
			input:  "call me",
			region: "US",
			want:   "",
		},
		{
			name:   "too short",
			input:  "12",
			region: "US",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	first := NormalizePhone("(212) 555-1234", "US")
	if second := NormalizePhone(first, "IL"); second != first {
		t.Errorf("NormalizePhone(%q) = %q, want unchanged", first, second)
	}
}
