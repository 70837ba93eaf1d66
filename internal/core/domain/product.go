package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrUnknownDimension = errors.New("unknown filter dimension")
	ErrInvalidCatalog   = errors.New("invalid catalog")
)

type Language string

const (
	LanguageEN Language = "EN"
	LanguageTE Language = "TE"
	LanguageHI Language = "HI"

	BaselineLanguage = LanguageEN
)

// Languages lists the supported display languages, baseline first.
func Languages() []Language {
	return []Language{LanguageEN, LanguageTE, LanguageHI}
}

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Languages() {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// LocalizedText maps a language to a display string.
type LocalizedText map[Language]string

// In returns the text for lang or an empty string.
func (t LocalizedText) In(lang Language) string {
	return t[lang]
}

type Category string

const (
	CategoryMillets     Category = "millets"
	CategoryFlours      Category = "flours"
	CategoryReadyToCook Category = "readyToCook"
	CategoryReadyToEat  Category = "readyToEat"
	CategorySpices      Category = "spices"
	CategoryPulses      Category = "pulses"
)

func Categories() []Category {
	return []Category{
		CategoryMillets,
		CategoryFlours,
		CategoryReadyToCook,
		CategoryReadyToEat,
		CategorySpices,
		CategoryPulses,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// LabelKey is the translation key of the category display label.
func (c Category) LabelKey() string {
	return "products.filters." + string(c)
}

type ProductType string

const (
	TypeRaw         ProductType = "raw"
	TypeFlour       ProductType = "flour"
	TypeReadyToCook ProductType = "readyToCook"
	TypeReadyToEat  ProductType = "readyToEat"
)

func ProductTypes() []ProductType {
	return []ProductType{TypeRaw, TypeFlour, TypeReadyToCook, TypeReadyToEat}
}

func (t ProductType) Valid() bool {
	for _, known := range ProductTypes() {
		if t == known {
			return true
		}
	}
	return false
}

func (t ProductType) LabelKey() string {
	return "products.types." + string(t)
}

type PackSize string

// PackSizes are the sizes offered by the filter panel.
func PackSizes() []PackSize {
	return []PackSize{"250g", "500g", "1kg", "2kg", "5kg"}
}

type (
	Product struct {
		ID               string
		Slug             string
		Category         Category
		Type             ProductType
		AvailableWeights []PackSize
		Name             LocalizedText
		ShortDescription LocalizedText
		Nutrition        LocalizedText
		Images           []string
	}

	ProductSummary struct {
		ID               string
		Slug             string
		Name             string
		ShortDescription string
		CategoryLabel    string
		Image            string
	}

	ProductDetail struct {
		Summary   ProductSummary
		Type      ProductType
		TypeLabel string
		Weights   []PackSize
		Images    []string
		Nutrition []NutritionFact
	}

	NutritionFact struct {
		Label string
		Value string
	}
)

// Image returns the primary image reference.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) HasWeight(size PackSize) bool {
	for _, w := range p.AvailableWeights {
		if w == size {
			return true
		}
	}
	return false
}
