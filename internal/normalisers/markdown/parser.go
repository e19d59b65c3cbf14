// Package markdown parses markdown content files into normalised records.
package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/normalisers"
)

// ExcerptLength is the maximum excerpt length in runes.
const ExcerptLength = 200

// Parsed is the normalised projection of one markdown file.
type Parsed struct {
	Kind            domain.ContentKind
	Title           string
	Slug            string
	Body            string
	Excerpt         string
	Description     string
	Category        string
	Tags            []string
	Author          string
	PublishedAt     *time.Time
	Draft           bool
	Order           int
	Restricted      bool
	RestrictedRoles []string
	Releases        []ReleaseBlock
	SourceHash      string

	// FrontmatterErr is set when the frontmatter could not be parsed.
	// Parsing still succeeds with the whole file used as body.
	FrontmatterErr error
}

// Parse converts raw markdown into a Parsed record. It never fails:
// a broken frontmatter block is reported through FrontmatterErr.
func Parse(filePath, raw string) *Parsed {
	fm, body, fmErr := splitFrontmatter(raw)

	p := &Parsed{
		Kind:           Classify(filePath),
		Slug:           Slug(filePath),
		Body:           body,
		SourceHash:     Hash(raw),
		FrontmatterErr: fmErr,
	}

	p.Title = fm.str("title")
	if p.Title == "" {
		p.Title = extractMarkdownTitle(body, filePath)
	}

	p.Description = fm.str("description")
	p.Excerpt = fm.str("excerpt")
	if p.Excerpt == "" {
		p.Excerpt = p.Description
	}
	if p.Excerpt == "" {
		p.Excerpt = buildExcerpt(body)
	}

	p.Category = fm.str("category")
	if p.Category == "" {
		p.Category = CategoryFromPath(filePath)
	}

	p.Tags = fm.list("tags")
	p.Author = fm.str("author")
	p.Draft = fm.boolean("draft")
	p.Order = fm.integer("order", "sidebar_position")
	p.Restricted = fm.boolean("restricted")
	p.RestrictedRoles = fm.list("restrictedRoles")
	if t, ok := fm.time("date", "publishedAt"); ok {
		p.PublishedAt = &t
	}

	p.Releases = ExtractReleases(body)
	return p
}

// Hash returns the hex SHA-256 of raw file content.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Classify determines whether a path is a blog post or a document.
func Classify(filePath string) domain.ContentKind {
	p := "/" + strings.TrimPrefix(filepath.ToSlash(filePath), "/")
	lower := strings.ToLower(p)
	switch {
	case strings.Contains(lower, "/blog/"):
		return domain.ContentBlog
	case strings.Contains(lower, "/docs/"), strings.Contains(lower, "/documentation/"):
		return domain.ContentDocument
	case IsMarkdown(lower):
		return domain.ContentDocument
	default:
		return domain.ContentUnknown
	}
}

// IsMarkdown reports whether the path has a markdown extension.
func IsMarkdown(filePath string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	return ext == ".md" || ext == ".mdx"
}

// Slug derives the URL slug of a content file.
//
// The extension is stripped, the result lower-cased and whitespace runs
// replaced with hyphens. Files named index.md take the slug of their parent
// directory relative to the content root: docs/foo/index.md is "foo" while
// docs/foo/bar.md is "docs/foo/bar".
func Slug(filePath string) string {
	p := strings.TrimPrefix(filepath.ToSlash(filePath), "/")
	base := strings.ToLower(path.Base(p))
	if base == "index.md" || base == "index.mdx" {
		dir := path.Dir(p)
		rel := relativeToRoot(dir)
		if rel == "" {
			rel = path.Base(dir)
		}
		if rel == "." || rel == "/" {
			rel = "index"
		}
		return normaliseSlug(rel)
	}
	return normaliseSlug(strings.TrimSuffix(p, path.Ext(p)))
}

// CategoryFromPath returns the first directory segment after a docs/ segment.
func CategoryFromPath(filePath string) string {
	parts := strings.Split(strings.Trim(filepath.ToSlash(filePath), "/"), "/")
	for i, part := range parts {
		if strings.EqualFold(part, "docs") && i+1 < len(parts)-1 {
			return parts[i+1]
		}
	}
	return ""
}

// relativeToRoot strips everything up to and including the first content
// root segment. Returns "" when no content root is present or nothing follows it.
func relativeToRoot(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		if normalisers.IsContentRoot(part) {
			return strings.Join(parts[i+1:], "/")
		}
	}
	return ""
}

var whitespace = regexp.MustCompile(`\s+`)

func normaliseSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespace.ReplaceAllString(s, "-")
}

// extractMarkdownTitle extracts a title from the markdown content or falls back to filename.
func extractMarkdownTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := path.Base(filepath.ToSlash(uri))
	if strings.EqualFold(filename, "index.md") || strings.EqualFold(filename, "index.mdx") {
		filename = path.Base(path.Dir(filepath.ToSlash(uri)))
	}
	if ext := path.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

var headingLine = regexp.MustCompile(`(?m)^#{1,6}\s+.*$`)

// buildExcerpt returns the first prose paragraph of body, truncated.
func buildExcerpt(body string) string {
	text := stripMarkdown(headingLine.ReplaceAllString(ReleaseBlocksRemoved(body), ""))
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		runes := []rune(para)
		if len(runes) > ExcerptLength {
			return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
		}
		return para
	}
	return ""
}

var (
	codeBlock    = regexp.MustCompile("(?s)```.*?```")
	inlineCode   = regexp.MustCompile("`[^`]+`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	htmlComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting for plain text content.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = htmlComment.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = manyNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
