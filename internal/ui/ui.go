package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/desertthunder/lyrix/internal/tasks"
)

// pollInterval controls how often playback state refreshes.
const pollInterval = 5 * time.Second

// Model represents the viewer state.
type Model struct {
	ctx      context.Context
	flow     tasks.SessionFlow
	userID   string
	playback *tasks.Playback
	err      error
	loading  bool
	width    int
	help     help.Model
	keys     keyMap
}

// NewModel creates the viewer for a stored identity.
func NewModel(ctx context.Context, flow tasks.SessionFlow, userID string) Model {
	return Model{
		ctx:     ctx,
		flow:    flow,
		userID:  userID,
		loading: true,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

type playbackMsg struct {
	playback *tasks.Playback
	err      error
}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetch grants a fresh access token and queries playback. Each poll runs the
// refresh → resource fetch sequence of a normal request.
func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		access, err := m.flow.GrantAccess(m.ctx, m.userID)
		if err != nil {
			return playbackMsg{err: err}
		}

		playback, err := m.flow.NowPlaying(m.ctx, access)
		if err != nil {
			return playbackMsg{err: err}
		}

		return playbackMsg{playback: playback}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case playbackMsg:
		m.loading = false
		m.playback = msg.playback
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			m.loading = true
			return m, m.fetch()
		case key.Matches(msg, m.keys.open):
			if m.playback != nil && m.playback.Song != nil {
				// Fire and forget; a browser failure is visible to the user anyway.
				_ = shared.OpenBrowser(m.playback.Song.URL)
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("lyrix") + "\n")

	switch {
	case m.loading && m.playback == nil:
		b.WriteString(styles.text.Render("Loading playback...") + "\n")
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not reach Spotify: %v", m.err)) + "\n")
	case m.playback == nil || m.playback.Track == nil:
		b.WriteString(styles.text.Render("Nothing playing. Try disabling private mode or play a song.") + "\n")
	default:
		track := m.playback.Track
		b.WriteString(styles.text.Render(track.Title) + "\n")
		b.WriteString(styles.accent.Render(track.Artist))
		if track.Album != "" {
			b.WriteString(styles.help.Render(" — " + track.Album))
		}
		b.WriteString("\n\n")
		b.WriteString(progressBar(track.ProgressMS, track.DurationMS, barWidth(m.width)) + "\n")

		if m.playback.Song != nil {
			b.WriteString(styles.help.Render("Lyrics: "+m.playback.Song.URL) + "\n")
		} else {
			b.WriteString(styles.help.Render("Song is not on Genius.com.") + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func barWidth(width int) int {
	if width <= 0 || width > 48 {
		return 40
	}
	return width - 8
}

// progressBar renders elapsed/total playback as a fixed-width bar.
func progressBar(progressMS, durationMS, width int) string {
	if durationMS <= 0 || width <= 0 {
		return ""
	}

	filled := progressMS * width / durationMS
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	elapsed := time.Duration(progressMS) * time.Millisecond
	total := time.Duration(durationMS) * time.Millisecond

	return fmt.Sprintf("%s %s/%s", styles.accent.Render(bar), formatClock(elapsed), formatClock(total))
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
