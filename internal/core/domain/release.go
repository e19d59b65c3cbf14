package domain

import (
	"sort"
	"time"
)

// Release is a versioned release note extracted from a document.
// It is unique on (RepositoryID, Version, FilePath).
type Release struct {
	ID           string
	RepositoryID string
	Version      string
	Content      string
	Teams        []string
	FilePath     string

	// NotifiedAt is set once the release-published notification went out.
	NotifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameTeams reports whether the release names exactly the given teams,
// ignoring order.
func (r *Release) SameTeams(teams []string) bool {
	if len(r.Teams) != len(teams) {
		return false
	}
	a := append([]string(nil), r.Teams...)
	b := append([]string(nil), teams...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Team is a known release audience.
type Team struct {
	Slug    string
	Name    string
	Enabled bool
}
