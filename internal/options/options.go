// Package options defines the validated option record a run is driven by.
package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gersonkurz/officesetup/internal/catalog"
)

var (
	ErrInvalidAction   = errors.New("invalid action")
	ErrMissingProducts = errors.New("no products given")
	ErrEmptyEdition    = errors.New("edition must not be empty")
	ErrEmptyLocale     = errors.New("locale must not be empty")
)

// Action selects what the installer does with the configuration.
type Action int

const (
	Install Action = iota + 1
	Download
)

// ParseAction accepts "install" or "download" in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "install":
		return Install, nil
	case "download":
		return Download, nil
	}
	return 0, fmt.Errorf("%w: %q (want install or download)", ErrInvalidAction, s)
}

func (a Action) String() string {
	switch a {
	case Install:
		return "install"
	case Download:
		return "download"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == Install || a == Download
}

// Record is the immutable input to a run.
type Record struct {
	action   Action
	products []string
	edition  string
	locale   string
}

// New validates the raw inputs and resolves products against cat.
// Edition and locale are kept verbatim.
func New(action Action, products []string, edition, locale string, cat catalog.Catalog) (Record, error) {
	if !action.Valid() {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
	if len(products) == 0 {
		return Record{}, ErrMissingProducts
	}
	if edition == "" {
		return Record{}, ErrEmptyEdition
	}
	if locale == "" {
		return Record{}, ErrEmptyLocale
	}

	resolved, err := cat.Resolve(products)
	if err != nil {
		return Record{}, err
	}

	return Record{
		action:   action,
		products: resolved,
		edition:  edition,
		locale:   locale,
	}, nil
}

// SplitProducts splits a comma separated product list, dropping blanks.
func SplitProducts(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Action returns the requested action.
func (r Record) Action() Action { return r.action }

// Edition returns the OfficeClientEdition value, e.g. "64".
func (r Record) Edition() string { return r.edition }

// Locale returns the Language ID, e.g. "en-us".
func (r Record) Locale() string { return r.locale }

// Products returns a copy of the requested products.
func (r Record) Products() []string {
	out := make([]string, len(r.products))
	copy(out, r.products)
	return out
}
