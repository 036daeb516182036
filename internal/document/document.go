// Package document builds the Office Deployment Tool configuration file.
package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Configuration is the root element of an ODT configuration file.
type Configuration struct {
	XMLName xml.Name `xml:"Configuration"`
	Adds    []Add    `xml:"Add"`
}

// Add describes one install source.
type Add struct {
	SourcePath          string    `xml:"SourcePath,attr"`
	Branch              string    `xml:"Branch,attr"`
	OfficeClientEdition string    `xml:"OfficeClientEdition,attr"`
	Products            []Product `xml:"Product"`
}

// Product is a product suite, e.g. ProPlusRetail.
type Product struct {
	ID          string       `xml:"ID,attr"`
	Languages   []Language   `xml:"Language"`
	ExcludeApps []ExcludeApp `xml:"ExcludeApp"`
}

// Language selects an installation language.
type Language struct {
	ID string `xml:"ID,attr"`
}

// ExcludeApp removes a single application from the product.
type ExcludeApp struct {
	ID string `xml:"ID,attr"`
}

// Parse reads a configuration document.
func Parse(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &cfg, nil
}

// ReadFile reads and parses a configuration file.
func ReadFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data)
}

// Marshal serializes the document with four-space indentation.
func (c *Configuration) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// WriteFile serializes the document to path, replacing any existing file.
func (c *Configuration) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Dump writes the serialized document to w.
func Dump(w io.Writer, c *Configuration) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// ExcludedIDs returns the ExcludeApp IDs of every product, in document order.
func (c *Configuration) ExcludedIDs() []string {
	var ids []string
	for _, add := range c.Adds {
		for _, p := range add.Products {
			for _, e := range p.ExcludeApps {
				ids = append(ids, e.ID)
			}
		}
	}
	return ids
}
