// Package static loads the product catalog and the translation tables
// from YAML, embedded in the binary or read from a file.
package static

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var productsRawData []byte

var _ port.ProductCatalog = (*Catalog)(nil)

type (
	catalogFile struct {
		Products []productEntry `yaml:"products"`
	}

	productEntry struct {
		ID               string            `yaml:"id"`
		Slug             string            `yaml:"slug"`
		Category         string            `yaml:"category"`
		Type             string            `yaml:"type"`
		AvailableWeights []string          `yaml:"available_weights"`
		Name             map[string]string `yaml:"name"`
		ShortDescription map[string]string `yaml:"short_description"`
		Nutrition        map[string]string `yaml:"nutrition"`
		Images           []string          `yaml:"images"`
	}
)

// Catalog provides lazy-loaded, read-only access to the product list.
type Catalog struct {
	raw      []byte
	once     sync.Once
	products []domain.Product
	bySlug   map[string]int
	err      error
}

// NewCatalog parses the embedded catalog on first access.
func NewCatalog() *Catalog {
	return NewCatalogFromBytes(productsRawData)
}

func NewCatalogFromBytes(raw []byte) *Catalog {
	return &Catalog{raw: raw}
}

// NewCatalogFromFile reads the catalog from path, or uses the embedded
// catalog when path is empty.
func NewCatalogFromFile(path string) (*Catalog, error) {
	const op = "static.NewCatalogFromFile"
	if path == "" {
		return NewCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewCatalogFromBytes(raw), nil
}

// Products returns a copy of all products in stored order.
func (c *Catalog) Products() ([]domain.Product, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	cp := make([]domain.Product, len(c.products))
	copy(cp, c.products)
	return cp, nil
}

func (c *Catalog) BySlug(slug string) (domain.Product, error) {
	const op = "Catalog.BySlug"

	c.once.Do(c.load)
	if c.err != nil {
		return domain.Product{}, c.err
	}
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Product{}, fmt.Errorf("%s: %q: %w", op, slug, domain.ErrNotFound)
	}
	return c.products[i], nil
}

// Validate forces the load and reports catalog errors.
func (c *Catalog) Validate() error {
	_, err := c.Products()
	return err
}

func (c *Catalog) load() {
	const op = "Catalog.load"

	var f catalogFile
	if err := yaml.Unmarshal(c.raw, &f); err != nil {
		c.err = fmt.Errorf("%s: parse yaml: %w", op, err)
		return
	}

	products, err := toDomainProducts(f.Products)
	if err != nil {
		c.err = fmt.Errorf("%s: %w", op, err)
		return
	}

	c.products = products
	c.bySlug = make(map[string]int, len(products))
	for i, p := range products {
		c.bySlug[p.Slug] = i
	}
}

func toDomainProducts(entries []productEntry) ([]domain.Product, error) {
	var errs []error
	ids := make(map[string]struct{}, len(entries))
	slugs := make(map[string]struct{}, len(entries))

	products := make([]domain.Product, 0, len(entries))
	for i, e := range entries {
		p, err := e.toDomain()
		if err != nil {
			errs = append(errs, fmt.Errorf("product #%d (%q): %w", i, e.ID, err))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("product #%d: duplicate id %q", i, p.ID))
		}
		if _, dup := slugs[p.Slug]; dup {
			errs = append(errs, fmt.Errorf("product #%d: duplicate slug %q", i, p.Slug))
		}
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
		products = append(products, p)
	}

	if len(errs) != 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, errors.Join(errs...))
	}
	return products, nil
}

func (e productEntry) toDomain() (domain.Product, error) {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("empty id"))
	}
	if e.Slug == "" {
		errs = append(errs, errors.New("empty slug"))
	}

	category := domain.Category(e.Category)
	if !category.Valid() {
		errs = append(errs, fmt.Errorf("unknown category %q", e.Category))
	}
	typ := domain.ProductType(e.Type)
	if !typ.Valid() {
		errs = append(errs, fmt.Errorf("unknown type %q", e.Type))
	}
	if len(e.AvailableWeights) == 0 {
		errs = append(errs, errors.New("no pack sizes"))
	}

	name, err := toLocalized(e.Name)
	if err != nil {
		errs = append(errs, fmt.Errorf("name: %w", err))
	} else if name.In(domain.BaselineLanguage) == "" {
		errs = append(errs, fmt.Errorf("name: missing %s", domain.BaselineLanguage))
	}
	desc, err := toLocalized(e.ShortDescription)
	if err != nil {
		errs = append(errs, fmt.Errorf("short_description: %w", err))
	}
	nutrition, err := toLocalized(e.Nutrition)
	if err != nil {
		errs = append(errs, fmt.Errorf("nutrition: %w", err))
	}

	if len(errs) != 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	weights := make([]domain.PackSize, len(e.AvailableWeights))
	for i, w := range e.AvailableWeights {
		weights[i] = domain.PackSize(w)
	}

	return domain.Product{
		ID:               e.ID,
		Slug:             e.Slug,
		Category:         category,
		Type:             typ,
		AvailableWeights: weights,
		Name:             name,
		ShortDescription: desc,
		Nutrition:        nutrition,
		Images:           e.Images,
	}, nil
}

func toLocalized(m map[string]string) (domain.LocalizedText, error) {
	t := make(domain.LocalizedText, len(m))
	for code, v := range m {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			return nil, err
		}
		t[lang] = v
	}
	return t, nil
}
