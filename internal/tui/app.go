// Package tui provides the interactive Bubble Tea session browser.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/model"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Results  []*transcript.Result
	LoadTime time.Duration
	Err      error
}

// View modes.
const (
	viewList = iota
	viewDetail
)

var (
	appTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFCF0")).
			Background(lipgloss.Color("#3AA99F")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6F6E69"))

	detailHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#3AA99F"))

	roleUserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4385BE"))

	roleAssistantStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#879A39"))

	roleOtherStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6F6E69"))
)

// sessionItem adapts a session to the bubbles list item interface.
type sessionItem struct {
	res *transcript.Result
}

func (i sessionItem) Title() string {
	s := i.res.Session
	title := shortID(s.SessionID)
	if s.Summary != nil && *s.Summary != "" {
		title = cli.Truncate(*s.Summary, 60)
	}
	return title
}

func (i sessionItem) Description() string {
	s := i.res.Session
	parts := []string{
		s.ProjectName,
		fmt.Sprintf("%d msgs", s.MessageCount),
		cli.FormatTokens(i.res.Stats.TotalTokens) + " tok",
	}
	if s.FirstMessageTime != "" {
		parts = append(parts, cli.FormatTimestamp(s.FirstMessageTime))
	}
	if s.HasErrors {
		parts = append(parts, "errors")
	}
	return strings.Join(parts, "  ·  ")
}

func (i sessionItem) FilterValue() string {
	s := i.res.Session
	if s.Summary != nil {
		return s.ProjectName + " " + *s.Summary
	}
	return s.ProjectName + " " + s.SessionID
}

// App is the root Bubble Tea model.
type App struct {
	claudeDir string
	opts      transcript.Options

	loaded   bool
	loadErr  error
	loadTime time.Duration

	viewMode int
	width    int
	height   int

	spinner  spinner.Model
	sessions list.Model
	detail   viewport.Model
	selected *transcript.Result
}

// NewApp creates a new TUI app model.
func NewApp(claudeDir string, opts transcript.Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AA99F"))

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#3AA99F")).
		BorderLeftForeground(lipgloss.Color("#3AA99F"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#6F6E69")).
		BorderLeftForeground(lipgloss.Color("#3AA99F"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return App{
		claudeDir: claudeDir,
		opts:      opts,
		spinner:   sp,
		sessions:  l,
		detail:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, loadDataCmd(a.claudeDir, a.opts))
}

func loadDataCmd(claudeDir string, opts transcript.Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		loaded, err := pipeline.Load(claudeDir, opts, nil)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		return DataLoadedMsg{Results: loaded.Sessions, LoadTime: time.Since(start)}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sessions.SetSize(msg.Width, msg.Height-2)
		a.detail.Width = msg.Width
		a.detail.Height = msg.Height - 3
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		if msg.Err == nil {
			items := make([]list.Item, 0, len(msg.Results))
			for _, r := range msg.Results {
				items = append(items, sessionItem{res: r})
			}
			a.sessions.SetItems(items)
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		// Let the list's filter input swallow keys while active.
		if a.viewMode == viewList && a.sessions.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			if a.viewMode == viewDetail && msg.String() == "q" {
				a.viewMode = viewList
				return a, nil
			}
			return a, tea.Quit

		case "enter":
			if a.viewMode == viewList {
				if item, ok := a.sessions.SelectedItem().(sessionItem); ok {
					a.selected = item.res
					a.detail.SetContent(renderSession(item.res, a.width))
					a.detail.GotoTop()
					a.viewMode = viewDetail
				}
				return a, nil
			}

		case "esc":
			if a.viewMode == viewDetail {
				a.viewMode = viewList
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.viewMode {
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
	default:
		a.sessions, cmd = a.sessions.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if !a.loaded {
		return fmt.Sprintf("\n  %s Loading session history...\n", a.spinner.View())
	}
	if a.loadErr != nil {
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			cli.RenderError(a.loadErr.Error()),
			statusStyle.Render("press q to quit"))
	}

	switch a.viewMode {
	case viewDetail:
		return a.viewSessionDetail()
	default:
		status := statusStyle.Render(fmt.Sprintf(
			"  %d sessions loaded in %s  ·  [enter] open  [/] filter  [q] quit",
			len(a.sessions.Items()), a.loadTime.Round(time.Millisecond)))
		return a.sessions.View() + "\n" + status
	}
}

func (a App) viewSessionDetail() string {
	sel := a.selected
	if sel == nil {
		return ""
	}

	title := appTitleStyle.Render("Session " + shortID(sel.Session.SessionID))
	status := statusStyle.Render(fmt.Sprintf("  %3.f%%  ·  [esc] back  [q] quit",
		a.detail.ScrollPercent()*100))
	return title + "\n" + a.detail.View() + "\n" + status
}

// renderSession builds the scrollable detail text for one session.
func renderSession(res *transcript.Result, width int) string {
	if width < 40 {
		width = 80
	}
	wrap := width - 4

	var b strings.Builder
	s := res.Session

	b.WriteString(detailHeaderStyle.Render(s.ProjectName))
	b.WriteString("\n")
	if s.Summary != nil && *s.Summary != "" {
		b.WriteString(statusStyle.Render(*s.Summary))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"%d messages  ·  %s tokens  ·  %s - %s",
		s.MessageCount,
		cli.FormatTokens(res.Stats.TotalTokens),
		cli.FormatTimestamp(s.FirstMessageTime),
		cli.FormatTimestamp(s.LastMessageTime))))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(strings.Repeat("─", wrap)))
	b.WriteString("\n\n")

	for _, m := range res.Messages {
		var roleStyle lipgloss.Style
		label := m.Type
		switch m.Type {
		case transcript.TypeUser:
			roleStyle = roleUserStyle
		case transcript.TypeAssistant:
			roleStyle = roleAssistantStyle
			if m.Model != nil {
				label += " (" + *m.Model + ")"
			}
		default:
			roleStyle = roleOtherStyle
		}

		b.WriteString(roleStyle.Render(label))
		if m.Timestamp != "" {
			b.WriteString(statusStyle.Render("  " + cli.FormatTimestamp(m.Timestamp)))
		}
		b.WriteString("\n")
		b.WriteString(contentPreview(m.Content, wrap))
		b.WriteString("\n\n")
	}

	return b.String()
}

// contentPreview extracts displayable text from a content payload, which is
// either a plain string or a list of typed blocks.
func contentPreview(content json.RawMessage, wrap int) string {
	if !model.RawSet(content) {
		return statusStyle.Render("(no content)")
	}

	var text string
	if err := json.Unmarshal(content, &text); err != nil {
		var blocks []struct {
			Type string `json:"type"`
			Text string `json:"text"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(content, &blocks); err != nil {
			return statusStyle.Render("(unrecognized content)")
		}
		var parts []string
		for _, blk := range blocks {
			switch blk.Type {
			case "text":
				parts = append(parts, blk.Text)
			case "tool_use":
				parts = append(parts, "[tool: "+blk.Name+"]")
			case "tool_result":
				parts = append(parts, "[tool result]")
			case "thinking":
				parts = append(parts, "[thinking]")
			default:
				parts = append(parts, "["+blk.Type+"]")
			}
		}
		text = strings.Join(parts, "\n")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return statusStyle.Render("(empty)")
	}

	var wrapped strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > wrap {
			wrapped.WriteString(line[:wrap])
			wrapped.WriteString("\n")
			line = line[wrap:]
		}
		wrapped.WriteString(line)
		wrapped.WriteString("\n")
	}
	return strings.TrimRight(wrapped.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
