package render

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingMessage reports a key absent from every candidate locale.
var ErrMissingMessage = errors.New("render: message not found")

// Catalog is a Translator backed by flat YAML message files, one per
// locale, named <locale>.yaml. Messages may hold fmt verbs filled from the
// translation arguments.
type Catalog struct {
	messages map[string]map[string]string
	fallback string
}

// LoadCatalog reads every .yaml and .yml file at the root of fsys.
// fallback names the locale consulted when a key is missing; it may be
// empty.
func LoadCatalog(fsys fs.FS, fallback string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("render: read catalog: %w", err)
	}

	c := &Catalog{messages: make(map[string]map[string]string), fallback: normalizeLocale(fallback)}
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("render: read catalog %s: %w", entry.Name(), err)
		}
		messages := make(map[string]string)
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("render: parse catalog %s: %w", entry.Name(), err)
		}
		c.messages[normalizeLocale(strings.TrimSuffix(entry.Name(), ext))] = messages
	}
	return c, nil
}

// Locales lists the loaded locales in name order.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate looks key up in locale, then its base language, then the
// fallback locale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range c.candidates(locale) {
		msg, ok := c.messages[candidate][key]
		if !ok {
			continue
		}
		if len(args) > 0 && strings.Contains(msg, "%") {
			return fmt.Sprintf(msg, args...), nil
		}
		return msg, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingMessage, key, locale)
}

func (c *Catalog) candidates(locale string) []string {
	locale = normalizeLocale(locale)
	out := make([]string, 0, 3)
	if locale != "" {
		out = append(out, locale)
		if base, _, ok := strings.Cut(locale, "-"); ok {
			out = append(out, base)
		}
	}
	if c.fallback != "" && c.fallback != locale {
		out = append(out, c.fallback)
	}
	return out
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
