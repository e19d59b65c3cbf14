// Package meta parses hierarchical _meta.json category descriptors.
//
// A descriptor is an ordered JSON object of slug -> entry, where an entry is
// either a title string or an object with title, icon and description.
// The directory the file lives in determines the level and parent of the
// entries it defines.
package meta

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docsync/internal/normalisers"
)

// FileName is the descriptor file name.
const FileName = "_meta.json"

// reservedKey is skipped in every descriptor.
const reservedKey = "index"

// ErrNotObject indicates the descriptor is not a JSON object.
var ErrNotObject = errors.New("meta: descriptor is not an object")

// Entry is one category defined by a descriptor.
type Entry struct {
	Slug        string
	Title       string
	Icon        string
	Description string
	ParentSlug  *string
	Level       int
	Order       int
}

type entryFields struct {
	Title       string
	Icon        string
	Description string
}

// IsMetaFile reports whether filePath is a _meta.json descriptor.
func IsMetaFile(filePath string) bool {
	return path.Base(filepath.ToSlash(filePath)) == FileName
}

// Parse decodes a descriptor. basePath is the repository's configured base
// path; slugs, levels and parents are relative to the content root below it.
func Parse(filePath, raw, basePath string) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("meta: parse %s: %w", filePath, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, filePath)
	}

	dir := Dir(filePath, basePath)
	level := 0
	var parent *string
	if dir != "" {
		level = len(strings.Split(dir, "/"))
		p := dir
		parent = &p
	}

	pairs := lastPairs(root)
	entries := make([]Entry, 0, len(pairs))
	for order, kv := range pairs {
		var fields entryFields
		switch kv.value.Kind {
		case yaml.ScalarNode:
			fields.Title = kv.value.Value
		case yaml.MappingNode:
			for _, field := range lastPairs(kv.value) {
				if field.value.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("meta: entry %q in %s: field %q is not a string", kv.key, filePath, field.key)
				}
				switch field.key {
				case "title":
					fields.Title = field.value.Value
				case "icon":
					fields.Icon = field.value.Value
				case "description":
					fields.Description = field.value.Value
				}
			}
		default:
			return nil, fmt.Errorf("meta: entry %q in %s has unsupported type", kv.key, filePath)
		}
		if fields.Title == "" {
			fields.Title = kv.key
		}

		slug := kv.key
		if dir != "" {
			slug = dir + "/" + kv.key
		}
		entries = append(entries, Entry{
			Slug:        strings.ToLower(slug),
			Title:       fields.Title,
			Icon:        fields.Icon,
			Description: fields.Description,
			ParentSlug:  parent,
			Level:       level,
			Order:       order,
		})
	}
	return entries, nil
}

type keyValue struct {
	key   string
	value *yaml.Node
}

// lastPairs returns the key/value pairs of a mapping in document order.
// A repeated key keeps the position of its first occurrence and the value
// of its last, as JSON decoders do. Empty and reserved keys are dropped.
func lastPairs(m *yaml.Node) []keyValue {
	var pairs []keyValue
	index := make(map[string]int)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := strings.TrimSpace(m.Content[i].Value)
		if key == "" || key == reservedKey {
			continue
		}
		if at, ok := index[key]; ok {
			pairs[at].value = m.Content[i+1]
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, keyValue{key: key, value: m.Content[i+1]})
	}
	return pairs
}

// Dir returns the directory of a descriptor relative to the repository's
// content root. See normalisers.RootRelative.
func Dir(filePath, basePath string) string {
	return normalisers.RootRelative(path.Dir(filepath.ToSlash(filePath)), basePath)
}
