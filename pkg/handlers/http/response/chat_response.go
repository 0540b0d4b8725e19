package response

import "github.com/NeuralTrust/SafeChat/pkg/app/safety"

type ChatResponse struct {
	Response    string `json:"response"`
	Filtered    bool   `json:"filtered"`
	SafetyScore int    `json:"safetyScore"`
	Source      string `json:"source"`
}

// UnavailableResponse still carries a reply for the child.
type UnavailableResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type AssessResponse struct {
	Locale string `json:"locale"`
	safety.Assessment
}

type CategoriesResponse struct {
	DefaultLocale string                `json:"default_locale"`
	Locales       []string              `json:"locales"`
	Categories    []safety.CategoryInfo `json:"categories"`
}
