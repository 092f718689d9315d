package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("aguacate"),
		m.refresh(),
		tick(m.config.RefreshInterval),
	)
}

func (m Model) refresh() tea.Cmd {
	return tea.Batch(
		fetchStatus(m.api),
		fetchHistory(m.api, m.config.HistoryLimit, m.filter),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case statusMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.data
			m.lastUpdated = time.Now()
		}
		return m, nil

	case historyMsg:
		if msg.task != m.filter {
			return m, nil
		}
		if msg.err != nil {
			// A status error is the more useful one to show.
			if m.err == nil {
				m.err = msg.err
			}
			return m, nil
		}
		m.history = msg.data
		m.clampOffset()
		return m, nil

	case tickMsg:
		if m.paused {
			return m, tick(m.config.RefreshInterval)
		}
		m.loading = true
		return m, tea.Batch(m.refresh(), tick(m.config.RefreshInterval))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.loading = true
		return m, m.refresh()

	case "p":
		m.paused = !m.paused
		return m, nil

	case "t":
		m.filter = nextFilter(m.filter)
		m.history = nil
		m.tableOffset = 0
		return m, fetchHistory(m.api, m.config.HistoryLimit, m.filter)

	case "up", "k":
		m.tableOffset = max(m.tableOffset-1, 0)
		return m, nil

	case "down", "j":
		m.tableOffset++
		m.clampOffset()
		return m, nil
	}

	return m, nil
}

func (m *Model) clampOffset() {
	n := 0
	if m.history != nil {
		n = len(m.history.Records)
	}
	m.tableOffset = min(m.tableOffset, max(n-1, 0))
}
