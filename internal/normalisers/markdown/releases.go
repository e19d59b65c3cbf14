package markdown

import (
	"regexp"
	"strings"
)

// ReleaseBlock is a release note embedded in a document between
//
//	<!-- release:start version="1.4.0" teams="payments, core" -->
//	...
//	<!-- release:end -->
type ReleaseBlock struct {
	Version string
	Teams   []string
	Content string
}

var (
	releaseBlock = regexp.MustCompile(`(?s)<!--\s*release:start\b(.*?)-->(.*?)<!--\s*release:end\s*-->`)
	releaseAttr  = regexp.MustCompile(`(\w+)\s*=\s*"([^"]*)"`)
)

// ExtractReleases scans body for release blocks. Blocks without a version
// are ignored. Team slugs are lower-cased and trimmed.
func ExtractReleases(body string) []ReleaseBlock {
	matches := releaseBlock.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]ReleaseBlock, 0, len(matches))
	for _, m := range matches {
		attrs := map[string]string{}
		for _, a := range releaseAttr.FindAllStringSubmatch(m[1], -1) {
			attrs[strings.ToLower(a[1])] = a[2]
		}

		version := strings.TrimSpace(attrs["version"])
		if version == "" {
			continue
		}

		var teams []string
		for _, t := range strings.Split(attrs["teams"], ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				teams = append(teams, t)
			}
		}

		blocks = append(blocks, ReleaseBlock{
			Version: version,
			Teams:   teams,
			Content: strings.TrimSpace(m[2]),
		})
	}
	return blocks
}

// ReleaseBlocksRemoved returns body with release markers removed but the
// release content kept.
func ReleaseBlocksRemoved(body string) string {
	return releaseBlock.ReplaceAllString(body, "$2")
}
