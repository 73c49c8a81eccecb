package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "convert to lowercase",
			input: []string{"WiFi", "MINIBAR"},
			want:  []string{"wifi", "minibar"},
		},
		{
			name:  "trim whitespace",
			input: []string{" Sea View ", "  Balcony  "},
			want:  []string{"sea view", "balcony"},
		},
		{
			name:  "remove duplicates",
			input: []string{"Balcony", "balcony", "BALCONY "},
			want:  []string{"balcony"},
		},
		{
			name:  "filter empty strings",
			input: []string{"WiFi", "", "  ", "Balcony"},
			want:  []string{"wifi", "balcony"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeImages(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "add scheme and dedupe",
			input: []string{"cdn.laluna.example/rooms/1.jpg", "https://CDN.laluna.example/rooms/1.jpg"},
			want:  []string{"https://cdn.laluna.example/rooms/1.jpg"},
		},
		{
			name:  "drop unparseable",
			input: []string{"https://", "  "},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeImages(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeImages(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps http scheme",
			input: "http://cdn.laluna.example/a.png",
			want:  "http://cdn.laluna.example/a.png",
		},
		{
			name:  "preserves path case",
			input: "https://cdn.laluna.example/Rooms/Suite.PNG",
			want:  "https://cdn.laluna.example/Rooms/Suite.PNG",
		},
		{
			name:  "drops tracking params and trailing slash",
			input: "https://laluna.example/gallery/?utm_source=mail&size=large",
			want:  "https://laluna.example/gallery?size=large",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeURL(got); again != got {
				t.Errorf("NormalizeURL is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
