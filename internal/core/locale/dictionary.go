// Package locale resolves display strings for the supported languages and
// owns the current display language.
package locale

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/niksmo/millet-catalog/internal/core/domain"
)

// A MissingKeysError lists keys of the baseline table that are absent
// in other languages.
type MissingKeysError struct {
	Missing map[domain.Language][]string
}

func (e *MissingKeysError) Error() string {
	langs := make([]string, 0, len(e.Missing))
	for l := range e.Missing {
		langs = append(langs, string(l))
	}
	sort.Strings(langs)

	var b strings.Builder
	b.WriteString("incomplete translations:")
	for _, l := range langs {
		keys := e.Missing[domain.Language(l)]
		fmt.Fprintf(&b, " %s missing %d key(s) [%s];", l, len(keys), strings.Join(keys, ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Dictionary is a validated string table per supported language.
type Dictionary struct {
	tables map[domain.Language]map[string]string
}

// NewDictionary builds a dictionary from raw tables keyed by language code.
//
// Unknown language codes are rejected. Every supported language gets a table.
// When a language lacks keys of the baseline table the dictionary is still
// returned together with a [*MissingKeysError].
func NewDictionary(raw map[string]map[string]string) (*Dictionary, error) {
	const op = "locale.NewDictionary"

	d := &Dictionary{tables: make(map[domain.Language]map[string]string)}
	for code, table := range raw {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.tables[lang] = table
	}

	base, ok := d.tables[domain.BaselineLanguage]
	if !ok || len(base) == 0 {
		return nil, fmt.Errorf("%s: baseline %s table is empty", op, domain.BaselineLanguage)
	}

	missing := make(map[domain.Language][]string)
	for _, lang := range domain.Languages() {
		if d.tables[lang] == nil {
			d.tables[lang] = map[string]string{}
		}
		if lang == domain.BaselineLanguage {
			continue
		}
		for key := range base {
			if _, ok := d.lookup(key, lang); !ok {
				missing[lang] = append(missing[lang], key)
			}
		}
		slices.Sort(missing[lang])
	}

	if len(missing) != 0 {
		return d, &MissingKeysError{Missing: missing}
	}
	return d, nil
}

// lookup treats an empty value as absent.
func (d *Dictionary) lookup(key string, lang domain.Language) (string, bool) {
	v := d.tables[lang][key]
	return v, v != ""
}

// Translator maps dotted keys to display strings.
//
// A key absent or empty for the requested language resolves to the key itself.
// Each such fallback is logged once.
type Translator struct {
	dict     *Dictionary
	reported sync.Map
}

func NewTranslator(d *Dictionary) *Translator {
	return &Translator{dict: d}
}

func (t *Translator) Translate(key string, lang domain.Language) string {
	if v, ok := t.dict.lookup(key, lang); ok {
		return v
	}
	t.reportFallback(key, lang)
	return key
}

// For binds the translator to one language.
func (t *Translator) For(lang domain.Language) Localizer {
	return Localizer{t: t, lang: lang}
}

func (t *Translator) reportFallback(key string, lang domain.Language) {
	const op = "Translator.Translate"
	if _, seen := t.reported.LoadOrStore(string(lang)+"\x00"+key, struct{}{}); seen {
		return
	}
	slog.Warn("translation missing, falling back to key",
		"op", op, "lang", lang, "key", key,
	)
}

// A Localizer translates keys for a fixed language.
type Localizer struct {
	t    *Translator
	lang domain.Language
}

func (l Localizer) Language() domain.Language {
	return l.lang
}

func (l Localizer) T(key string) string {
	return l.t.Translate(key, l.lang)
}

// CategoryLabel implements the label source used by the catalog matcher.
func (l Localizer) CategoryLabel(c domain.Category) string {
	return l.T(c.LabelKey())
}
