package notify

import (
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Event names carried in the payload and matched by webhook filters.
const (
	EventReleasePublished = "release.published"
	EventContentUpdated   = "content.updated"
)

// Payload is the JSON body posted to webhooks.
type Payload struct {
	Event      string            `json:"event"`
	SentAt     time.Time         `json:"sent_at"`
	Repository RepositoryPayload `json:"repository"`
	Release    *ReleasePayload   `json:"release,omitempty"`
	Changes    []ChangePayload   `json:"changes,omitempty"`
	SyncLogID  string            `json:"sync_log_id,omitempty"`
}

// RepositoryPayload identifies the repository an event belongs to.
type RepositoryPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Source string `json:"source"`
}

// ReleasePayload describes a published release.
type ReleasePayload struct {
	ID       string   `json:"id"`
	Version  string   `json:"version"`
	Title    string   `json:"title"`
	Teams    []string `json:"teams"`
	FilePath string   `json:"file_path"`
	Content  string   `json:"content"`
}

// ChangePayload is one content change.
type ChangePayload struct {
	Type     string `json:"type"`
	Kind     string `json:"kind"`
	FilePath string `json:"file_path"`
	Title    string `json:"title"`
}

func releasePayload(event driven.ReleaseEvent, now time.Time) Payload {
	r := event.Release
	return Payload{
		Event:      EventReleasePublished,
		SentAt:     now,
		Repository: repositoryPayload(event.Repository),
		Release: &ReleasePayload{
			ID:       r.ID,
			Version:  r.Version,
			Title:    event.Title,
			Teams:    r.Teams,
			FilePath: r.FilePath,
			Content:  r.Content,
		},
	}
}

func contentPayload(event driven.ContentUpdateEvent, now time.Time) Payload {
	changes := make([]ChangePayload, 0, len(event.Changes))
	for _, c := range event.Changes {
		changes = append(changes, ChangePayload{
			Type:     string(c.ChangeType),
			Kind:     string(c.DocumentType),
			FilePath: c.FilePath,
			Title:    c.Title,
		})
	}
	return Payload{
		Event:      EventContentUpdated,
		SentAt:     now,
		Repository: repositoryPayload(event.Repository),
		Changes:    changes,
		SyncLogID:  event.SyncLogID,
	}
}

func repositoryPayload(repo domain.Repository) RepositoryPayload {
	return RepositoryPayload{
		ID:     repo.ID,
		Name:   repo.Name,
		Slug:   repo.Slug,
		Source: repo.DisplayName(),
	}
}
