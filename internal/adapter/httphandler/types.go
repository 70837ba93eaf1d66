package httphandler

import "github.com/niksmo/millet-catalog/internal/core/domain"

type (
	ProductSummary struct {
		ID               string `json:"id"`
		Slug             string `json:"slug"`
		Name             string `json:"name"`
		ShortDescription string `json:"short_description"`
		CategoryLabel    string `json:"category_label"`
		Image            string `json:"image,omitempty"`
	}

	EmptyState struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Reset    string `json:"reset"`
	}

	CatalogPage struct {
		Language          string           `json:"language"`
		Products          []ProductSummary `json:"products"`
		Count             int              `json:"count"`
		ActiveFilterCount int              `json:"active_filter_count"`
		SearchText        string           `json:"search_text"`
		Empty             *EmptyState      `json:"empty,omitempty"`
	}

	NutritionFact struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	ProductDetail struct {
		ProductSummary
		Type      string          `json:"type"`
		TypeLabel string          `json:"type_label"`
		Weights   []string        `json:"weights"`
		Images    []string        `json:"images"`
		Nutrition []NutritionFact `json:"nutrition"`
	}

	FilterOption struct {
		Value      string `json:"value"`
		Label      string `json:"label"`
		Selections int    `json:"selections"`
	}

	FilterOptions struct {
		Language   string         `json:"language"`
		Categories []FilterOption `json:"categories"`
		PackSizes  []FilterOption `json:"pack_sizes"`
		Types      []FilterOption `json:"types"`
	}

	Translation struct {
		Key      string `json:"key"`
		Language string `json:"language"`
		Text     string `json:"text"`
	}
)

type (
	ViewCreated struct {
		ViewID string `json:"view_id"`
	}

	ToggleRequest struct {
		Dimension string `json:"dimension"`
		Value     string `json:"value"`
	}

	SearchRequest struct {
		Text string `json:"text"`
	}

	LanguageBody struct {
		Language string `json:"language"`
	}
)

func fromSummary(v domain.ProductSummary) ProductSummary {
	return ProductSummary{
		ID:               v.ID,
		Slug:             v.Slug,
		Name:             v.Name,
		ShortDescription: v.ShortDescription,
		CategoryLabel:    v.CategoryLabel,
		Image:            v.Image,
	}
}

func fromPage(v domain.CatalogPage) CatalogPage {
	page := CatalogPage{
		Language:          string(v.Language),
		Products:          make([]ProductSummary, len(v.Products)),
		Count:             v.Count,
		ActiveFilterCount: v.ActiveFilterCount,
		SearchText:        v.SearchText,
	}
	for i, p := range v.Products {
		page.Products[i] = fromSummary(p)
	}
	if v.Empty != nil {
		page.Empty = &EmptyState{
			Title:    v.Empty.Title,
			Subtitle: v.Empty.Subtitle,
			Reset:    v.Empty.Reset,
		}
	}
	return page
}

func fromDetail(v domain.ProductDetail) ProductDetail {
	d := ProductDetail{
		ProductSummary: fromSummary(v.Summary),
		Type:           string(v.Type),
		TypeLabel:      v.TypeLabel,
		Weights:        make([]string, len(v.Weights)),
		Images:         v.Images,
		Nutrition:      make([]NutritionFact, len(v.Nutrition)),
	}
	for i, w := range v.Weights {
		d.Weights[i] = string(w)
	}
	for i, f := range v.Nutrition {
		d.Nutrition[i] = NutritionFact{Label: f.Label, Value: f.Value}
	}
	if d.Images == nil {
		d.Images = []string{}
	}
	return d
}

func fromOptions(v domain.FilterOptions) FilterOptions {
	conv := func(opts []domain.FilterOption) []FilterOption {
		out := make([]FilterOption, len(opts))
		for i, o := range opts {
			out[i] = FilterOption{Value: o.Value, Label: o.Label, Selections: o.Selections}
		}
		return out
	}
	return FilterOptions{
		Language:   string(v.Language),
		Categories: conv(v.Categories),
		PackSizes:  conv(v.PackSizes),
		Types:      conv(v.Types),
	}
}
