package series

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Area is one of the five ENEM knowledge areas charted on the results page.
type Area struct {
	Key   string
	Name  string
	Color string
}

var Areas = []Area{
	{Key: "matematica", Name: "Matemática", Color: "#3b82f6"},
	{Key: "linguagens", Name: "Linguagens", Color: "#22c55e"},
	{Key: "ciencias_natureza", Name: "Ciências da Natureza", Color: "#f59e0b"},
	{Key: "ciencias_humanas", Name: "Ciências Humanas", Color: "#ef4444"},
	{Key: "redacao", Name: "Redação", Color: "#8b5cf6"},
}

var areaAliases = map[string]string{
	"ciencias-natureza": "Ciências da Natureza",
	"ciencias-humanas":  "Ciências Humanas",
}

// AreaNames returns the display names of Areas in chart order.
func AreaNames() []string {
	names := make([]string, len(Areas))
	for i, a := range Areas {
		names[i] = a.Name
	}
	return names
}

// ColorOf returns the chart color for a display name, or a neutral gray.
func ColorOf(name string) string {
	for _, a := range Areas {
		if a.Name == name {
			return a.Color
		}
	}
	return "#737373"
}

// DisplayName maps a raw subject key such as "ciencias_natureza" to its
// display name. Unknown keys get underscores replaced and words title-cased.
func DisplayName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	for _, a := range Areas {
		if a.Key == lower || strings.EqualFold(a.Name, s) {
			return a.Name
		}
	}
	if name, ok := areaAliases[lower]; ok {
		return name
	}
	// Casers keep state, so one is built per call.
	return cases.Title(language.BrazilianPortuguese, cases.NoLower).String(strings.ReplaceAll(s, "_", " "))
}
