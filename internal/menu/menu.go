// Package menu defines the kiosk menu catalog: the immutable set of items a
// customer can order, each with its serving-temperature options.
//
// The catalog is loaded once at startup — either from a YAML file via [Load]
// or from the compiled-in [Default] set — and is read-only afterwards, so a
// [Catalog] is safe for concurrent use.
package menu

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Temperature is a serving temperature. The zero value means "unspecified":
// either the customer has not said one yet, or the item (e.g. a dessert) has
// no temperature at all.
type Temperature string

const (
	Hot Temperature = "HOT"
	Ice Temperature = "ICE"
)

// IsSet reports whether t carries an actual temperature.
func (t Temperature) IsSet() bool {
	return t == Hot || t == Ice
}

// Korean returns the spoken Korean form of t ("핫" / "아이스"), or an empty
// string for the zero value.
func (t Temperature) Korean() string {
	switch t {
	case Hot:
		return "핫"
	case Ice:
		return "아이스"
	}
	return ""
}

// Item is a single entry in the menu catalog. Items are immutable after the
// catalog is built.
type Item struct {
	// ID is the stable catalog identifier (e.g. "americano").
	ID string `yaml:"id"`

	// Name is the display name in Korean, exactly as spoken by customers.
	Name string `yaml:"name"`

	// EnglishName is the romanised name, also matched against transcripts.
	EnglishName string `yaml:"name_en"`

	// Category groups the item for display ("coffee", "dessert", ...).
	Category string `yaml:"category"`

	// Price is the unit price in KRW.
	Price int `yaml:"price"`

	// Temperatures lists the serving temperatures this item is offered at.
	// Empty for items without a temperature (desserts).
	Temperatures []Temperature `yaml:"temperatures"`

	// Available reports whether the item can currently be ordered.
	Available bool `yaml:"available"`
}

// Offers reports whether the item can be served at temperature t.
func (it *Item) Offers(t Temperature) bool {
	for _, have := range it.Temperatures {
		if have == t {
			return true
		}
	}
	return false
}

// SoleTemperature returns the item's only serving temperature when there is
// exactly one option, or the zero value otherwise.
func (it *Item) SoleTemperature() Temperature {
	if len(it.Temperatures) == 1 {
		return it.Temperatures[0]
	}
	return ""
}

// Catalog is the full menu. Construct it with [New] or [Load]; it must not be
// mutated afterwards.
type Catalog struct {
	items []*Item
	byID  map[string]*Item
}

// New builds a Catalog from items. Items with duplicate IDs are rejected.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]*Item, 0, len(items)),
		byID:  make(map[string]*Item, len(items)),
	}
	for i := range items {
		it := items[i]
		if it.ID == "" {
			return nil, fmt.Errorf("menu: item %q has no id", it.Name)
		}
		if it.Name == "" {
			return nil, fmt.Errorf("menu: item %q has no name", it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("menu: duplicate item id %q", it.ID)
		}
		for _, t := range it.Temperatures {
			if !t.IsSet() {
				return nil, fmt.Errorf("menu: item %q has invalid temperature %q", it.ID, t)
			}
		}
		c.items = append(c.items, &it)
		c.byID[it.ID] = &it
	}
	return c, nil
}

// Load reads a YAML catalog file. The file holds a top-level "items" list
// with the same fields as [Item].
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("menu: parse %q: %w", path, err)
	}
	return c, nil
}

// LoadFromReader decodes a YAML catalog from r. Useful in tests where
// catalogs are built from string literals.
func LoadFromReader(r io.Reader) (*Catalog, error) {
	var doc struct {
		Items []Item `yaml:"items"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("menu: decode yaml: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("menu: catalog has no items")
	}
	return New(doc.Items)
}

// Items returns all catalog entries in declaration order, including
// unavailable ones.
func (c *Catalog) Items() []*Item {
	return c.items
}

// Available returns all orderable entries in declaration order.
func (c *Catalog) Available() []*Item {
	out := make([]*Item, 0, len(c.items))
	for _, it := range c.items {
		if it.Available {
			out = append(out, it)
		}
	}
	return out
}

// ByID looks an item up by its catalog ID. Returns nil when the ID is
// unknown.
func (c *Catalog) ByID(id string) *Item {
	return c.byID[id]
}

// ByName looks an item up by its exact Korean or English display name,
// ignoring case and internal whitespace. Returns nil when nothing matches.
func (c *Catalog) ByName(name string) *Item {
	want := squash(name)
	if want == "" {
		return nil
	}
	for _, it := range c.items {
		if squash(it.Name) == want || squash(it.EnglishName) == want {
			return it
		}
	}
	return nil
}

// squash lowercases s and strips all whitespace.
func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
