package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// socialKeys are top-level author fields folded into Links.
var socialKeys = []string{"github", "twitter", "linkedin", "website", "mastodon"}

type authorFile struct {
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Bio       string            `json:"bio"`
	Avatar    string            `json:"avatar"`
	AvatarURL string            `json:"avatarUrl"`
	Role      string            `json:"role"`
	Links     map[string]string `json:"links"`
}

// AuthorProcessor upserts author profiles from authors/*.json files.
// Authors are shared across repositories and are never deleted by a sync.
type AuthorProcessor struct {
	authors driven.AuthorStore
}

// NewAuthorProcessor creates an author processor.
func NewAuthorProcessor(authors driven.AuthorStore) *AuthorProcessor {
	return &AuthorProcessor{authors: authors}
}

// Process upserts every decodable author file and returns the number saved.
// Files without an email are reported in errs.
func (p *AuthorProcessor) Process(ctx context.Context, files []domain.SourceFile) (saved int, errs []string, err error) {
	for _, f := range files {
		author, perr := parseAuthor(f.Content)
		if perr != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Path, perr))
			continue
		}
		if uerr := p.authors.Upsert(ctx, author); uerr != nil {
			return saved, errs, fmt.Errorf("save author %s: %w", author.Email, uerr)
		}
		saved++
	}
	return saved, errs, nil
}

func parseAuthor(raw string) (*domain.Author, error) {
	var f authorFile
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("decode author: %w", err)
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: author has no email", domain.ErrInvalidInput)
	}

	var extra map[string]any
	_ = json.Unmarshal([]byte(raw), &extra)

	links := make(map[string]string, len(f.Links))
	for k, v := range f.Links {
		if v = strings.TrimSpace(v); v != "" {
			links[k] = v
		}
	}
	for _, key := range socialKeys {
		if v, ok := extra[key].(string); ok && strings.TrimSpace(v) != "" {
			if _, set := links[key]; !set {
				links[key] = strings.TrimSpace(v)
			}
		}
	}

	avatar := f.AvatarURL
	if avatar == "" {
		avatar = f.Avatar
	}
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = email
	}

	return &domain.Author{
		Email:     email,
		Name:      name,
		Bio:       strings.TrimSpace(f.Bio),
		AvatarURL: strings.TrimSpace(avatar),
		Role:      strings.TrimSpace(f.Role),
		Links:     links,
	}, nil
}
