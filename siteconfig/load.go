package siteconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath derives the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// Load reads a site config file. The result is not validated.
func Load(path string) (SiteConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return SiteConfig{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	c, err := Decode(f, format)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return c, nil
}

// Decode reads a site config in the given format
func Decode(r io.Reader, format Format) (SiteConfig, error) {
	var raw SiteConfig
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
			return SiteConfig{}, err
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
			return SiteConfig{}, err
		}
	default:
		return SiteConfig{}, fmt.Errorf("unsupported format %q", format)
	}
	return Build(raw.Title, raw.Description, raw.Theme), nil
}

// Encode writes c as indented JSON in the shape the site generator expects
func Encode(w io.Writer, c SiteConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
