package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Loft District", "the-loft-district"},
		{"Atlanta", "atlanta"},
		{"3B", "3b"},
		{"  Unit #12 / North  ", "unit-12-north"},
		{"Peachtree---Plaza", "peachtree-plaza"},
		{"Café Lofts", "caf-lofts"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	assert.Equal(t, Slugify("Midtown Lofts"), Slugify("Midtown Lofts"))
}

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Front Door.PNG", "front-door"},
		{"pool.jpeg", "pool"},
		{"C:\\Users\\me\\kitchen 2.webp", "kitchen-2"},
		{"../../etc/passwd", "passwd"},
		{".jpg", "photo"},
		{"", "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeBaseName(tt.input))
		})
	}
}
