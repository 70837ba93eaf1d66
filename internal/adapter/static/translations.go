package static

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var translationsRawData []byte

// LoadTranslations returns raw string tables keyed by language code.
// An empty path selects the embedded tables.
func LoadTranslations(path string) (map[string]map[string]string, error) {
	const op = "static.LoadTranslations"

	raw := translationsRawData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		raw = b
	}

	var tables map[string]map[string]string
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("%s: parse yaml: %w", op, err)
	}
	return tables, nil
}
