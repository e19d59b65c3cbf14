// Package apispec extracts metadata from OpenAPI/AsyncAPI style YAML or JSON
// specification files.
package apispec

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultVersion is used when a spec declares no info.version.
const DefaultVersion = "latest"

// ErrEmptySpec indicates the file contains no document.
var ErrEmptySpec = errors.New("apispec: empty document")

// Metadata is what the store needs to know about a spec file.
type Metadata struct {
	Slug        string
	Version     string
	Name        string
	Description string
	Category    string
}

type document struct {
	Info struct {
		Title       string `yaml:"title"`
		Version     any    `yaml:"version"`
		Description string `yaml:"description"`
	} `yaml:"info"`
	Slug string `yaml:"x-slug"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Parse extracts metadata from a spec located at filePath.
func Parse(filePath, content string) (*Metadata, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptySpec
	}

	var doc document
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("apispec: parse %s: %w", filePath, err)
	}

	p := filepath.ToSlash(filePath)
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))

	slug := doc.Slug
	if slug == "" {
		slug = base
	}
	slug = strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(slug), "-"), "-")
	if slug == "" {
		return nil, fmt.Errorf("apispec: cannot derive slug for %s", filePath)
	}

	version := DefaultVersion
	if doc.Info.Version != nil {
		if v := strings.TrimSpace(fmt.Sprint(doc.Info.Version)); v != "" {
			version = v
		}
	}

	name := strings.TrimSpace(doc.Info.Title)
	if name == "" {
		name = base
	}

	return &Metadata{
		Slug:        slug,
		Version:     version,
		Name:        name,
		Description: strings.TrimSpace(doc.Info.Description),
		Category:    Category(p),
	}, nil
}

// Category returns the directory segment directly below api-specs/.
func Category(filePath string) string {
	parts := strings.Split(strings.Trim(filepath.ToSlash(filePath), "/"), "/")
	for i, part := range parts {
		if strings.EqualFold(part, "api-specs") && i+1 < len(parts)-1 {
			return parts[i+1]
		}
	}
	return ""
}
