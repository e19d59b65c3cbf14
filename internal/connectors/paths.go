package connectors

import (
	"path"
	"path/filepath"
	"strings"
)

// FileClass is the role a repository file plays in a sync run.
type FileClass int

const (
	// FileIgnored is not synced.
	FileIgnored FileClass = iota

	// FileContent is a markdown document or blog post.
	FileContent

	// FileMeta is a _meta.json category descriptor.
	FileMeta

	// FileAuthor is an author profile JSON file.
	FileAuthor

	// FileAPISpec is a YAML API specification.
	FileAPISpec

	// FileImage is a binary image asset under a content directory.
	FileImage
)

// IsDocumentClass reports whether files of class c go to the documents list.
func (c FileClass) IsDocumentClass() bool {
	return c == FileContent || c == FileMeta || c == FileAuthor
}

const apiSpecsDir = "api-specs"

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".avif": true, ".ico": true,
}

var imageDirs = map[string]bool{
	"docs":      true,
	"blog":      true,
	apiSpecsDir: true,
}

// NormalizePath converts a repository path to slash form without a leading slash.
func NormalizePath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

// InScope reports whether p lies under basePath. An empty base path
// matches everything.
func InScope(p, basePath string) bool {
	base := strings.Trim(NormalizePath(basePath), "/")
	if base == "" {
		return true
	}
	p = NormalizePath(p)
	return p == base || strings.HasPrefix(p, base+"/")
}

// Classify assigns a file to the document, API spec or image set.
func Classify(p string) FileClass {
	p = NormalizePath(p)
	segments := strings.Split(p, "/")
	dirs := segments[:len(segments)-1]
	name := segments[len(segments)-1]
	lowerName := strings.ToLower(name)
	ext := strings.ToLower(path.Ext(name))

	specDepth := depthBelow(dirs, apiSpecsDir)

	switch {
	case name == "_meta.json":
		if specDepth >= 0 {
			return FileIgnored
		}
		return FileMeta

	case ext == ".json":
		if hasSegment(dirs, "authors") && lowerName != "index.json" {
			return FileAuthor
		}
		return FileIgnored

	case ext == ".md" || ext == ".mdx":
		// Under api-specs/ only landing pages are kept.
		if specDepth >= 0 && lowerName != "index.md" && lowerName != "readme.md" {
			return FileIgnored
		}
		return FileContent

	case ext == ".yaml" || ext == ".yml":
		// api-specs/<category>/<file>.yaml: at least one directory below api-specs.
		if specDepth >= 1 {
			return FileAPISpec
		}
		return FileIgnored

	case imageExts[ext]:
		for _, d := range dirs {
			if imageDirs[strings.ToLower(d)] {
				return FileImage
			}
		}
		return FileIgnored
	}
	return FileIgnored
}

// IsAPISpec reports whether p is ingested as an API spec.
func IsAPISpec(p string) bool {
	return Classify(p) == FileAPISpec
}

// IsAuthorFile reports whether p is an author profile.
func IsAuthorFile(p string) bool {
	return Classify(p) == FileAuthor
}

// depthBelow returns how many directories follow the first segment named
// name, or -1 when there is no such segment.
func depthBelow(dirs []string, name string) int {
	for i, d := range dirs {
		if strings.EqualFold(d, name) {
			return len(dirs) - i - 1
		}
	}
	return -1
}

func hasSegment(dirs []string, name string) bool {
	for _, d := range dirs {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}
