package i18n

import (
	"embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var builtin embed.FS

const DefaultLocale = "en"

// Catalog holds flattened translation keys ("status.pending") per locale.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
	fallback string
}

// NewCatalog returns a catalog preloaded with the bundled locales.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{
		messages: make(map[string]map[string]string),
		fallback: DefaultLocale,
	}

	entries, err := builtin.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled locales: %w", err)
	}
	for _, e := range entries {
		data, err := builtin.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", e.Name(), err)
		}
		if err := c.Add(strings.TrimSuffix(e.Name(), ".yaml"), data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile merges a YAML locale file into the catalog.
func (c *Catalog) LoadFile(locale, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read locale file: %w", err)
	}
	return c.Add(locale, data)
}

// Add merges nested YAML messages for a locale.
func (c *Catalog) Add(locale string, data []byte) error {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to parse locale %s: %w", locale, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	msgs, ok := c.messages[locale]
	if !ok {
		msgs = make(map[string]string)
		c.messages[locale] = msgs
	}
	flatten("", tree, msgs)
	return nil
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Translate looks up key for locale, then the fallback locale, and returns
// the key itself when neither has it.
func (c *Catalog) Translate(locale, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if msg, ok := c.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := c.messages[c.fallback][key]; ok {
		return msg
	}
	return key
}

// Translator binds the catalog to one locale.
func (c *Catalog) Translator(locale string) func(key string) string {
	return func(key string) string {
		return c.Translate(locale, key)
	}
}

// Locales lists the loaded locales.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for l := range c.messages {
		out = append(out, l)
	}
	return out
}
