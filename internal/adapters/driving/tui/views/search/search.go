// Package search provides the main search view for the TUI.
package search

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
)

// View is the search view: query input, summary, artifact list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ArtifactList
	statusbar *status.Bar
	spinner   spinner.Model

	searchService driving.SearchService
	ctx           context.Context

	result     *domain.SearchResult
	searching  bool
	focusInput bool // true while typing, false while navigating results
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewArtifactList(s),
		statusbar:     status.NewBar(s, km),
		spinner:       sp,
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.searching {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		return v, cmd

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.searching = false
		v.statusbar.SetError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Open):
		a := v.list.SelectedArtifact()
		if a == nil {
			return v, nil
		}
		selected := *a
		return v, func() tea.Msg { return messages.ArtifactSelected{Artifact: selected} }
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Sources):
		return v, viewChanged(messages.ViewSources)
	case keymap.Matches(msg.String(), v.keymap.Help):
		return v, viewChanged(messages.ViewHelp)
	case keymap.Matches(msg.String(), v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		if v.searching {
			return v, nil
		}
		q := v.input.Query()
		if err := q.Validate(); err != nil {
			v.err = err
			v.statusbar.SetError(err)
			return v, nil
		}
		v.err = nil
		v.searching = true
		v.statusbar.SetState(status.StateSearching)
		return v, tea.Batch(v.spinner.Tick, v.performSearch(q))

	case tea.KeyEsc:
		if v.result != nil {
			v.focusInput = false
			v.input.Blur()
			return v, nil
		}
		return v, func() tea.Msg { return messages.Quit{} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performSearch runs the federated search off the UI loop.
func (v *View) performSearch(q domain.SearchQuery) tea.Cmd {
	svc, ctx := v.searchService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := svc.Search(ctx, q)
		return messages.SearchCompleted{Result: result, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.searching = false
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return
	}

	v.err = nil
	v.result = msg.Result
	if msg.Result != nil {
		v.list.SetArtifacts(msg.Result.Artifacts)
	} else {
		v.list.SetArtifacts(nil)
	}
	v.statusbar.SetResult(msg.Result)

	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections,
		v.styles.Title.Render("Artifact Search")+v.styles.Muted.Render("  MedTech risk management"),
		"",
		v.input.View(),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.searching {
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" Routing and searching sources..."), "")
	} else if v.result != nil {
		if v.result.Summary != "" {
			sections = append(sections, v.styles.Summary.Width(max(v.width-4, 20)).Render(v.result.Summary), "")
		}
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-14) // header, input, summary and status
	v.statusbar.SetWidth(width)
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Result returns the last completed search result.
func (v *View) Result() *domain.SearchResult {
	return v.result
}

// SelectedArtifact returns the highlighted artifact.
func (v *View) SelectedArtifact() *domain.Artifact {
	return v.list.SelectedArtifact()
}

// Searching reports whether a search is in flight.
func (v *View) Searching() bool {
	return v.searching
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the query and results and focuses the input.
func (v *View) Reset() tea.Cmd {
	v.focusInput = true
	v.searching = false
	v.result = nil
	v.err = nil
	v.input.SetValue("")
	v.list.SetArtifacts(nil)
	v.statusbar.Clear()
	return v.input.Focus()
}

func viewChanged(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}
