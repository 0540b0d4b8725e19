package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Halo!!  ":          "halo",
		"Apa   kabar?":        "apa kabar",
		"What's your name?":   "whats your name",
		"2+2?":                "2+2",
		"Berapa 3 x 4 ya...": "berapa 3 x 4 ya",
		"":                    "",
		"?!":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestStaticCatalog_Lookup(t *testing.T) {
	c := NewStaticCatalog("id")

	tests := []struct {
		name    string
		message string
		locale  string
		want    string
		found   bool
	}{
		{"greeting id", "Halo", "id", "Halo juga! Aku teman ngobrolmu. Mau cerita atau tanya apa hari ini?", true},
		{"greeting en", "hello!", "en", "Hi there! I'm your chat buddy. What would you like to talk about today?", true},
		{"unknown locale uses default", "hai kak", "fr", "Halo juga! Aku teman ngobrolmu. Mau cerita atau tanya apa hari ini?", true},
		{"thanks", "Terima kasih!", "id", "Sama-sama! Senang bisa membantu kamu.", true},
		{"addition", "2+2?", "id", "2 + 2 = 4. Hebat, kamu suka berhitung!", true},
		{"multiplication", "what is 6 * 7", "en", "6 × 7 = 42. Great job practicing your numbers!", true},
		{"exact division", "12 : 4 berapa", "id", "12 : 4 = 3. Hebat, kamu suka berhitung!", true},
		{"inexact division", "7 / 2", "id", "", false},
		{"negative subtraction", "3 - 9", "id", "", false},
		{"operand too large", "500 + 1", "id", "", false},
		{"phone number", "nomorku 0812-3456-7890", "id", "", false},
		{"open question", "kenapa langit biru", "id", "", false},
		{"question prefix", "Berapa 3 x 4?", "id", "3 × 4 = 12. Hebat, kamu suka berhitung!", true},
		{"question suffix", "5+5 berapa ya?", "id", "5 + 5 = 10. Hebat, kamu suka berhitung!", true},
		{"sports score", "Tim bolaku menang 3-2 kemarin, seru banget!", "id", "", false},
		{"date", "aku lahir tanggal 10-10-2015", "id", "", false},
		{"class name", "Kenapa langit biru? aku kelas 4-2", "id", "", false},
		{"expression inside a sentence", "tadi di sekolah belajar 2+2 dan 3+3", "id", "", false},
		{"chained expression", "1+2+3", "id", "", false},
		{"empty", "   ", "id", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Lookup(tt.message, tt.locale)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticCatalog_Emergency(t *testing.T) {
	c := NewStaticCatalog("id")
	assert.NotEmpty(t, c.Emergency("id"))
	assert.NotEmpty(t, c.Emergency("en"))
	assert.Equal(t, c.Emergency("id"), c.Emergency("de"))
}
