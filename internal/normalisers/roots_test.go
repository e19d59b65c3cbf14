package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRelative(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		basePath string
		want     string
	}{
		{name: "docs root", path: "docs/guides", want: "guides"},
		{name: "docs itself", path: "docs", want: ""},
		{name: "blog root", path: "blog/2024/launch", want: "2024/launch"},
		{name: "no root keeps path", path: "Guides/Setup", want: "guides/setup"},
		{name: "base path stripped", path: "content/guides/setup", basePath: "content", want: "guides/setup"},
		{name: "base path itself", path: "content", basePath: "/content/", want: ""},
		{name: "base then docs", path: "site/docs/guides", basePath: "site", want: "guides"},
		{name: "docs inside base path", path: "docs/site/guides", basePath: "docs/site", want: "guides"},
		{name: "other prefix untouched", path: "contents/guides", basePath: "content", want: "contents/guides"},
		{name: "dot", path: ".", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RootRelative(tt.path, tt.basePath))
		})
	}
}
