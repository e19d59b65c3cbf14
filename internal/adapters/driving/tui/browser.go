// Package tui provides an interactive browser over synced content.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// kinds is the cycle order of the kind filter.
var kinds = []domain.ContentKind{domain.ContentUnknown, domain.ContentDocument, domain.ContentBlog}

type searchCompleted struct {
	results []domain.SearchResult
	err     error
}

type syncCompleted struct {
	repositoryID string
	result       *domain.SyncResult
	err          error
}

// Browser is the content browser model.
type Browser struct {
	ctx    context.Context
	search driving.SearchService
	sync   driving.SyncOrchestrator
	styles Styles
	keys   KeyMap

	input    textinput.Model
	results  []domain.SearchResult
	selected int
	kind     int
	busy     bool
	message  string
	err      error

	width  int
	height int
}

// Ensure Browser implements tea.Model.
var _ tea.Model = (*Browser)(nil)

// NewBrowser creates a browser. syncOrch may be nil, which disables resync.
func NewBrowser(ctx context.Context, search driving.SearchService, syncOrch driving.SyncOrchestrator) (*Browser, error) {
	if search == nil {
		return nil, ErrNoSearchService
	}

	ti := textinput.New()
	ti.Placeholder = "Search documents and blog posts..."
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return &Browser{
		ctx:    ctx,
		search: search,
		sync:   syncOrch,
		styles: NewStyles(DefaultTheme()),
		keys:   DefaultKeyMap(),
		input:  ti,
		width:  80,
		height: 24,
	}, nil
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("docsync"))
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.input.Width = max(20, msg.Width-14)
		return b, nil

	case searchCompleted:
		b.busy = false
		b.err = msg.err
		b.message = ""
		if msg.err == nil {
			b.results = msg.results
			b.selected = 0
			b.input.Blur()
		}
		return b, nil

	case syncCompleted:
		b.busy = false
		b.err = msg.err
		if msg.err == nil && msg.result != nil {
			b.message = fmt.Sprintf("Synced: %d added, %d modified, %d deleted",
				msg.result.Added, msg.result.Modified, msg.result.Deleted)
		}
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return b, tea.Quit
	}

	if b.input.Focused() {
		switch {
		case key.Matches(msg, b.keys.Search):
			query := strings.TrimSpace(b.input.Value())
			if query == "" || b.busy {
				return b, nil
			}
			b.busy = true
			return b, b.runSearch(query)
		case key.Matches(msg, b.keys.Kind):
			b.kind = (b.kind + 1) % len(kinds)
			return b, nil
		}
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}

	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Up):
		if b.selected > 0 {
			b.selected--
		}
	case key.Matches(msg, b.keys.Down):
		if b.selected < len(b.results)-1 {
			b.selected++
		}
	case key.Matches(msg, b.keys.NewSearch):
		b.input.SetValue("")
		b.err = nil
		b.message = ""
		return b, b.input.Focus()
	case key.Matches(msg, b.keys.Resync):
		return b, b.resync()
	}
	return b, nil
}

func (b *Browser) runSearch(query string) tea.Cmd {
	opts := domain.SearchOptions{Kind: kinds[b.kind]}
	return func() tea.Msg {
		results, err := b.search.Search(b.ctx, query, opts)
		return searchCompleted{results: results, err: err}
	}
}

func (b *Browser) resync() tea.Cmd {
	item := b.Selected()
	if item == nil || b.sync == nil || b.busy {
		return nil
	}
	b.busy = true
	b.message = "Syncing repository..."
	id := item.RepositoryID
	return func() tea.Msg {
		res, err := b.sync.Sync(b.ctx, id)
		return syncCompleted{repositoryID: id, result: res, err: err}
	}
}

// Selected returns the highlighted item, or nil.
func (b *Browser) Selected() *domain.ContentItem {
	if b.selected < 0 || b.selected >= len(b.results) {
		return nil
	}
	return &b.results[b.selected].Item
}

// Kind returns the active kind filter.
func (b *Browser) Kind() domain.ContentKind {
	return kinds[b.kind]
}

// View implements tea.Model.
func (b *Browser) View() string {
	sections := []string{
		b.styles.Title.Render("docsync") + "  " + b.styles.Muted.Render("kind: "+kindLabel(b.Kind())),
		b.styles.Input.Render(b.input.View()),
	}

	if b.err != nil {
		sections = append(sections, b.styles.Error.Render("Error: "+b.err.Error()))
	}

	sections = append(sections, b.renderResults())
	if item := b.Selected(); item != nil && !b.input.Focused() {
		sections = append(sections, b.renderDetail(item))
	}
	sections = append(sections, b.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b *Browser) renderResults() string {
	if len(b.results) == 0 {
		return b.styles.Muted.Render("No results")
	}

	visible := max(1, (b.height-16)/2)
	start := 0
	if b.selected >= visible {
		start = b.selected - visible + 1
	}
	end := min(len(b.results), start+visible)

	lines := []string{b.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(b.results)))}
	for i := start; i < end; i++ {
		r := &b.results[i]
		title := r.Item.Title
		if title == "" {
			title = r.Item.FilePath
		}
		title = truncate(title, b.width-16)
		if i == b.selected {
			lines = append(lines, b.styles.Selected.Render("> "+title))
		} else {
			lines = append(lines, b.styles.Normal.Render("  "+title)+" "+b.styles.Muted.Render(string(r.Item.Kind)))
		}
		if r.Snippet != "" {
			lines = append(lines, b.styles.Muted.Render("    "+truncate(r.Snippet, b.width-8)))
		}
	}
	return strings.Join(lines, "\n")
}

func (b *Browser) renderDetail(item *domain.ContentItem) string {
	lines := []string{
		b.styles.Subtitle.Render(item.Title),
		b.styles.Muted.Render(item.FilePath),
	}
	if item.Category != "" {
		lines = append(lines, "Category: "+item.Category)
	}
	if len(item.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(item.Tags, ", "))
	}
	if item.Author != "" {
		lines = append(lines, "Author: "+item.Author)
	}
	if item.PublishedAt != nil {
		lines = append(lines, "Published: "+item.PublishedAt.Format("2006-01-02"))
	}
	if item.Excerpt != "" {
		lines = append(lines, "", truncate(item.Excerpt, 3*(b.width-6)))
	}
	return b.styles.Panel.Width(max(20, b.width-4)).Render(strings.Join(lines, "\n"))
}

func (b *Browser) renderStatus() string {
	left := b.styles.Muted.Render("Ready")
	switch {
	case b.busy && b.message != "":
		left = b.styles.Muted.Render(b.message)
	case b.busy:
		left = b.styles.Muted.Render("Searching...")
	case b.message != "":
		left = b.styles.Success.Render(b.message)
	case len(b.results) > 0:
		left = b.styles.Normal.Render(fmt.Sprintf("%d results", len(b.results)))
	}

	bindings := b.keys.help(b.input.Focused())
	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	right := strings.Join(hints, "  ")

	pad := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", pad) + right)
}

func kindLabel(k domain.ContentKind) string {
	if k == domain.ContentUnknown {
		return "all"
	}
	return string(k)
}

func truncate(s string, n int) string {
	n = max(n, 10)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Run starts the browser in the alternate screen and blocks until it quits.
func Run(ctx context.Context, search driving.SearchService, syncOrch driving.SyncOrchestrator) error {
	b, err := NewBrowser(ctx, search, syncOrch)
	if err != nil {
		return err
	}
	p := tea.NewProgram(b, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
