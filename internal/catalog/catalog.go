// Package catalog holds the closed list of Office products the tool can
// include or exclude.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/BurntSushi/toml"
)

// DefaultProductID is the Product element ID written into every document.
const DefaultProductID = "ProPlusRetail"

var (
	ErrEmptyCatalog      = errors.New("catalog has no products")
	ErrDuplicateProduct  = errors.New("duplicate product in catalog")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrEmptyProductEntry = errors.New("empty product name")
)

// defaultProducts mirrors the application list of the Office Deployment Tool.
var defaultProducts = []string{
	"Word", "Excel", "PowerPoint", "Access",
	"Groove", "InfoPath", "Lync", "OneNote", "Project", "Outlook",
	"Publisher", "Visio", "SharePointDesigner", "OneDrive",
}

// Catalog is an ordered, duplicate-free product list. The zero value is
// empty; use Default, New or LoadFile.
type Catalog struct {
	productID string
	products  []string
	// lower-cased name -> canonical spelling
	index     map[string]string
}

// Default returns the built-in Office catalog.
func Default() Catalog {
	c, err := New(DefaultProductID, defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from an explicit product list. Names are matched
// case-insensitively, so "Word" and "word" count as duplicates.
func New(productID string, products []string) (Catalog, error) {
	if len(products) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}
	if productID == "" {
		productID = DefaultProductID
	}

	c := Catalog{
		productID: productID,
		products:  make([]string, 0, len(products)),
		index:     make(map[string]string, len(products)),
	}
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" {
			return Catalog{}, ErrEmptyProductEntry
		}
		key := strings.ToLower(p)
		if _, ok := c.index[key]; ok {
			return Catalog{}, fmt.Errorf("%w: %s", ErrDuplicateProduct, p)
		}
		c.index[key] = p
		c.products = append(c.products, p)
	}
	return c, nil
}

// catalogFile is the on-disk TOML layout:
//
//	product_id = "ProPlusRetail"
//	products = ["Word", "Excel"]
type catalogFile struct {
	ProductID string   `toml:"product_id"`
	Products  []string `toml:"products"`
}

// LoadFile reads a catalog from a TOML file.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	var raw catalogFile
	if _, err := toml.NewDecoder(f).Decode(&raw); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return New(raw.ProductID, raw.Products)
}

// ProductID returns the Product element identifier.
func (c Catalog) ProductID() string {
	return c.productID
}

// Products returns a copy of the product list in catalog order.
func (c Catalog) Products() []string {
	out := make([]string, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c Catalog) Len() int {
	return len(c.products)
}

// Lookup returns the canonical spelling of name.
func (c Catalog) Lookup(name string) (string, bool) {
	p, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Resolve maps user supplied names onto canonical catalog names. Repeated
// names collapse into one; the first occurrence decides the order.
func (c Catalog) Resolve(names []string) ([]string, error) {
	seen := stringset.New()
	out := make([]string, 0, len(names))
	for _, name := range names {
		p, ok := c.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProduct, name, strings.Join(c.products, ", "))
		}
		if seen.Contains(p) {
			continue
		}
		seen.Add(p)
		out = append(out, p)
	}
	return out, nil
}

// Exclude returns every catalog product not in requested, in catalog order.
// Requested names must already be canonical catalog names.
func (c Catalog) Exclude(requested []string) ([]string, error) {
	want := stringset.New()
	for _, r := range requested {
		p, ok := c.index[strings.ToLower(r)]
		if !ok || p != r {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, r)
		}
		want.Add(p)
	}

	excluded := make([]string, 0, len(c.products)-want.Len())
	for _, p := range c.products {
		if !want.Contains(p) {
			excluded = append(excluded, p)
		}
	}
	return excluded, nil
}
