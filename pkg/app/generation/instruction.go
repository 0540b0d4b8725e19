package generation

import "fmt"

var languages = map[string]string{
	"id": "Indonesian (Bahasa Indonesia)",
	"en": "English",
}

const persona = `You are a friendly, patient chat buddy for children aged 6 to 12.
Always answer in %s, whatever language the question is in.`

var rules = []string{
	"Use simple words and a warm, encouraging tone.",
	"Answer in at most three short sentences.",
	"Never talk about violence, weapons, adult topics, drugs or scary things.",
	"Never ask for or repeat personal information such as names, addresses, phone numbers or schools.",
	"If the child seems sad, scared or in danger, kindly suggest talking to a parent, teacher or another trusted adult.",
}

// SystemInstruction is the fixed persona prompt, including the answer language.
func SystemInstruction(locale string) string {
	language, ok := languages[locale]
	if !ok {
		language = languages["id"]
	}
	return fmt.Sprintf(persona, language)
}

// Rules constrain tone, length and content. They travel as provider instructions.
func Rules() []string {
	out := make([]string, len(rules))
	copy(out, rules)
	return out
}
