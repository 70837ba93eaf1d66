package service

import (
	"regexp"
	"strings"

	"github.com/niksmo/millet-catalog/internal/core/domain"
)

var servingPrefix = regexp.MustCompile(`(?i)per 100g:|100 గ్రాములకు:|प्रति 100 ग्राम:`)

// ParseNutrition splits free nutrition text like
// "Per 100g: Energy: 378 kcal, Protein: 11g" into label/value rows.
func ParseNutrition(text string) []domain.NutritionFact {
	text = servingPrefix.ReplaceAllString(text, "")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var facts []domain.NutritionFact
	for _, item := range strings.Split(text, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, value, _ := strings.Cut(item, ":")
		facts = append(facts, domain.NutritionFact{
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}
	return facts
}
