package generation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Arithmetic operators survive normalization so "2 + 2?" and "2+2" hit the same entry.
const arithmeticOperators = "+-x×*/:"

// The whole normalized message must be the expression, optionally framed as a question.
// Scores, dates and class names inside longer messages are left for the model.
var arithmeticPattern = regexp.MustCompile(
	`^(?:(?:berapa|berapakah|hasil|hitung|what is|whats|how much is|calculate)\s+)?` +
		`(\d{1,3})\s*([+\-x×*/:])\s*(\d{1,3})` +
		`(?:\s+(?:berapa|berapakah|ya|hasilnya|sama dengan|equals|is what)){0,2}$`)

const maxOperand = 100

type localized map[string]string

// StaticCatalog answers trivial, high-frequency messages without calling a model.
type StaticCatalog struct {
	defaultLocale string
	exact         map[string]localized
	arithmetic    localized
	emergency     localized
}

func NewStaticCatalog(defaultLocale string) *StaticCatalog {
	c := &StaticCatalog{
		defaultLocale: defaultLocale,
		exact:         make(map[string]localized),
		arithmetic: localized{
			"id": "%d %s %d = %d. Hebat, kamu suka berhitung!",
			"en": "%d %s %d = %d. Great job practicing your numbers!",
		},
		emergency: localized{
			"id": "Maaf, aku sedang kesulitan menjawab sekarang. Coba tanya lagi sebentar lagi, ya!",
			"en": "Sorry, I'm having a little trouble answering right now. Please try again in a moment!",
		},
	}

	greeting := localized{
		"id": "Halo juga! Aku teman ngobrolmu. Mau cerita atau tanya apa hari ini?",
		"en": "Hi there! I'm your chat buddy. What would you like to talk about today?",
	}
	c.add(greeting, "halo", "hallo", "hai", "hi", "hello", "hey", "halo kak", "hai kak")

	c.add(localized{
		"id": "Selamat pagi! Semoga harimu menyenangkan. Ada yang ingin kamu tanyakan?",
		"en": "Good morning! I hope you have a wonderful day. What would you like to ask?",
	}, "selamat pagi", "good morning", "pagi")
	c.add(localized{
		"id": "Selamat siang! Sudah makan siang belum? Yuk, kita ngobrol!",
		"en": "Good afternoon! I hope your day is going well. Let's chat!",
	}, "selamat siang", "selamat sore", "good afternoon")
	c.add(localized{
		"id": "Selamat malam! Jangan lupa istirahat yang cukup, ya.",
		"en": "Good evening! Don't forget to get enough rest tonight.",
	}, "selamat malam", "good evening", "good night")
	c.add(localized{
		"id": "Aku baik sekali, terima kasih sudah bertanya! Kalau kamu, bagaimana kabarnya?",
		"en": "I'm doing great, thanks for asking! How are you today?",
	}, "apa kabar", "gimana kabarnya", "how are you", "how are you doing")
	c.add(localized{
		"id": "Sama-sama! Senang bisa membantu kamu.",
		"en": "You're welcome! I'm happy I could help.",
	}, "terima kasih", "makasih", "trima kasih", "thanks", "thank you", "thank you very much")
	c.add(localized{
		"id": "Sampai jumpa lagi! Semoga harimu seru.",
		"en": "See you next time! Have a fun day.",
	}, "dadah", "sampai jumpa", "bye", "goodbye", "bye bye", "see you")
	c.add(localized{
		"id": "Aku adalah teman ngobrol yang siap menjawab pertanyaanmu dengan cara yang seru dan aman.",
		"en": "I'm a friendly chat buddy here to answer your questions in a fun and safe way.",
	}, "siapa kamu", "siapa namamu", "kamu siapa", "who are you", "what is your name", "whats your name")

	return c
}

func (c *StaticCatalog) add(answer localized, questions ...string) {
	for _, q := range questions {
		c.exact[Normalize(q)] = answer
	}
}

// Lookup returns the canned answer for message, if the catalog has one.
func (c *StaticCatalog) Lookup(message, locale string) (string, bool) {
	key := Normalize(message)
	if key == "" {
		return "", false
	}
	if answer, ok := c.exact[key]; ok {
		return c.pick(answer, locale), true
	}
	return c.arithmeticAnswer(key, locale)
}

// Emergency is the reply used when every other source failed. It is never empty.
func (c *StaticCatalog) Emergency(locale string) string {
	return c.pick(c.emergency, locale)
}

func (c *StaticCatalog) arithmeticAnswer(text, locale string) (string, bool) {
	m := arithmeticPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	a, errA := strconv.Atoi(m[1])
	b, errB := strconv.Atoi(m[3])
	if errA != nil || errB != nil || a > maxOperand || b > maxOperand {
		return "", false
	}

	var result int
	op := m[2]
	switch op {
	case "+":
		result = a + b
	case "-":
		if b > a {
			return "", false
		}
		result = a - b
	case "x", "×", "*":
		result = a * b
		op = "×"
	case "/", ":":
		if b == 0 || a%b != 0 {
			return "", false
		}
		result = a / b
		op = ":"
	default:
		return "", false
	}
	return fmt.Sprintf(c.pick(c.arithmetic, locale), a, op, b, result), true
}

func (c *StaticCatalog) pick(texts localized, locale string) string {
	if text, ok := texts[locale]; ok {
		return text
	}
	return texts[c.defaultLocale]
}

// Normalize lower-cases text, drops apostrophes, turns other punctuation into spaces
// (arithmetic operators excepted) and collapses runs of whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(arithmeticOperators, r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			space = true
		}
	}
	return b.String()
}
