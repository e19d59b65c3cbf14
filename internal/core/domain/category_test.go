package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryPrefixes(t *testing.T) {
	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, CategoryPrefixes("a/b/c"))
	assert.Equal(t, []string{"guides"}, CategoryPrefixes("/guides/"))
	assert.Nil(t, CategoryPrefixes(""))
}

func TestRelease_SameTeams(t *testing.T) {
	r := Release{Teams: []string{"core", "payments"}}
	assert.True(t, r.SameTeams([]string{"payments", "core"}))
	assert.False(t, r.SameTeams([]string{"payments"}))
	assert.False(t, r.SameTeams([]string{"payments", "search"}))
	// The receiver must not be reordered.
	assert.Equal(t, []string{"core", "payments"}, r.Teams)
}
