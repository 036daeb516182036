package document

import (
	"errors"
	"fmt"
	"os"

	"github.com/aymerick/raymond"

	"github.com/gersonkurz/officesetup/internal/catalog"
	"github.com/gersonkurz/officesetup/internal/options"
)

// Skeleton defaults. Edition and language are placeholders that Populate
// replaces.
const (
	DefaultSourcePath   = "Office"
	DefaultBranch       = "Current"
	placeholderEdition  = "64"
	placeholderLanguage = "zh-cn"
)

// ErrNoAddElement is returned when the document lacks an Add element.
var ErrNoAddElement = errors.New("configuration has no Add element")

const skeletonTemplate = `<Configuration>
    <Add SourcePath="{{SOURCE_PATH}}" Branch="{{BRANCH}}" OfficeClientEdition="{{EDITION}}">
        <Product ID="{{PRODUCT_ID}}">
            <Language ID="{{LANGUAGE}}" />
        </Product>
    </Add>
</Configuration>
`

// Builder writes and fills in the configuration file at Path.
type Builder struct {
	Path    string
	Catalog catalog.Catalog
}

// NewBuilder creates a builder for the configuration file at path.
func NewBuilder(path string, cat catalog.Catalog) *Builder {
	return &Builder{
		Path:    path,
		Catalog: cat,
	}
}

// Skeleton renders the minimal document with placeholder edition and language.
func (b *Builder) Skeleton() (string, error) {
	ctx := map[string]interface{}{
		"SOURCE_PATH": DefaultSourcePath,
		"BRANCH":      DefaultBranch,
		"EDITION":     placeholderEdition,
		"PRODUCT_ID":  b.Catalog.ProductID(),
		"LANGUAGE":    placeholderLanguage,
	}
	result, err := raymond.Render(skeletonTemplate, ctx)
	if err != nil {
		return "", fmt.Errorf("rendering skeleton: %w", err)
	}
	return result, nil
}

// Initialize removes any existing file at Path and writes a fresh skeleton.
func (b *Builder) Initialize() error {
	if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old configuration: %w", err)
	}

	skeleton, err := b.Skeleton()
	if err != nil {
		return err
	}
	if err := os.WriteFile(b.Path, []byte(skeleton), 0644); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}
	return nil
}

// Populate reads the file written by Initialize, applies the record's edition
// and locale, adds an ExcludeApp for every catalog product that was not
// requested, and writes the result back to Path.
func (b *Builder) Populate(rec options.Record) (*Configuration, error) {
	cfg, err := ReadFile(b.Path)
	if err != nil {
		return nil, err
	}

	excluded, err := b.Catalog.Exclude(rec.Products())
	if err != nil {
		return nil, err
	}

	if err := Apply(cfg, rec.Edition(), rec.Locale(), excluded); err != nil {
		return nil, err
	}

	if err := cfg.WriteFile(b.Path); err != nil {
		return nil, fmt.Errorf("writing configuration: %w", err)
	}
	return cfg, nil
}

// Apply mutates cfg in place. Every Add gets the edition, every Language the
// locale, and every Product one ExcludeApp per excluded ID it does not
// already carry.
func Apply(cfg *Configuration, edition, locale string, excluded []string) error {
	if len(cfg.Adds) == 0 {
		return ErrNoAddElement
	}

	for i := range cfg.Adds {
		add := &cfg.Adds[i]
		add.OfficeClientEdition = edition

		for j := range add.Products {
			product := &add.Products[j]
			for k := range product.Languages {
				product.Languages[k].ID = locale
			}

			present := make(map[string]bool, len(product.ExcludeApps))
			for _, e := range product.ExcludeApps {
				present[e.ID] = true
			}
			for _, id := range excluded {
				if present[id] {
					continue
				}
				present[id] = true
				product.ExcludeApps = append(product.ExcludeApps, ExcludeApp{ID: id})
			}
		}
	}
	return nil
}
