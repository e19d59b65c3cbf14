package markdown

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontmatter holds decoded YAML frontmatter values.
type frontmatter map[string]any

// splitFrontmatter separates a leading "---" YAML block from the body.
// On a YAML error the whole content is returned as body together with the error.
func splitFrontmatter(raw string) (frontmatter, string, error) {
	content := strings.TrimPrefix(raw, "\ufeff")
	normalised := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalised, "---\n") {
		return frontmatter{}, content, nil
	}

	rest := normalised[len("---\n"):]
	var block, body string
	if strings.HasPrefix(rest, "---") {
		body = rest[len("---"):]
	} else {
		end := strings.Index(rest, "\n---")
		if end < 0 {
			return frontmatter{}, content, nil
		}
		block = rest[:end]
		body = rest[end+len("\n---"):]
	}
	// Drop the remainder of the closing delimiter line.
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	fm := frontmatter{}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return frontmatter{}, content, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fm == nil {
		fm = frontmatter{}
	}
	return fm, body, nil
}

func (f frontmatter) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// list accepts a comma-separated string or a YAML sequence.
// Entries are trimmed and empty entries dropped.
func (f frontmatter) list(key string) []string {
	var raw []string
	switch v := f[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (f frontmatter) boolean(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

func (f frontmatter) integer(keys ...string) int {
	for _, key := range keys {
		switch v := f[key].(type) {
		case int:
			return v
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

func (f frontmatter) time(keys ...string) (time.Time, bool) {
	for _, key := range keys {
		switch v := f[key].(type) {
		case time.Time:
			return v.UTC(), true
		case string:
			s := strings.TrimSpace(v)
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC(), true
				}
			}
		}
	}
	return time.Time{}, false
}
