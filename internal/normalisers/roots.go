package normalisers

import (
	"path/filepath"
	"strings"
)

// contentRoots are the directory names that anchor slugs and categories.
var contentRoots = map[string]bool{
	"docs":          true,
	"documentation": true,
	"blog":          true,
}

// IsContentRoot reports whether a directory name anchors content.
func IsContentRoot(name string) bool {
	return contentRoots[strings.ToLower(name)]
}

// RootRelative returns p relative to the content root of a repository,
// lower-cased. basePath is stripped first, then everything up to and
// including the first docs, documentation or blog segment.
//
// Category slugs and the paths of the content that keeps them alive are
// both computed here, so the two always agree.
func RootRelative(p, basePath string) string {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "." {
		p = ""
	}

	if base := strings.Trim(filepath.ToSlash(basePath), "/"); base != "" {
		switch {
		case p == base:
			p = ""
		case strings.HasPrefix(p, base+"/"):
			p = strings.TrimPrefix(p, base+"/")
		}
	}
	if p == "" {
		return ""
	}

	parts := strings.Split(p, "/")
	for i, part := range parts {
		if IsContentRoot(part) {
			parts = parts[i+1:]
			break
		}
	}
	return strings.ToLower(strings.Join(parts, "/"))
}
