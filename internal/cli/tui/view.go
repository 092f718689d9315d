package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/aguacate/internal/classify"
)

// maxVisibleRows bounds the history table height
const maxVisibleRows = 8

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.status != nil {
		sections = append(sections, m.renderModels())

		if m.status.Runtime != nil {
			sections = append(sections, m.renderRuntime())

			if len(m.status.Runtime.Storage) > 0 {
				sections = append(sections, m.renderStorage())
			}
		}
	}

	if m.history != nil && (len(m.history.Records) > 0 || m.filter != "") {
		sections = append(sections, m.renderHistory())
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("AGUACATE DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	switch {
	case m.paused:
		refreshInfo = "⏸ paused"
	case m.loading:
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh p:pause t:task ↑↓:scroll")

	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderModels() string {
	var lines []string

	ready := "training"
	if m.status.Ready {
		ready = "all ready"
	}
	lines = append(lines, sectionHeaderStyle.Render(fmt.Sprintf("  Models (%s)", ready)))

	header := fmt.Sprintf("  %-6s │ %-13s │ %6s │ %6s │ %8s │ %8s",
		"Task", "State", "Hidden", "Epochs", "Error", "Time")
	lines = append(lines, tableHeaderStyle.Render(header))

	for _, st := range m.status.Models {
		state := lipgloss.NewStyle().
			Foreground(getStateColor(st.State)).
			Render(fmt.Sprintf("%-13s", st.State))

		epochs, trainErr, elapsed := "-", "-", "-"
		if st.Epochs > 0 {
			epochs = fmt.Sprintf("%d", st.Epochs)
			trainErr = fmt.Sprintf("%.2f", st.Error)
			elapsed = st.Duration.Round(10 * time.Millisecond).String()
		}

		row := fmt.Sprintf("  %-6s │ %s │ %6d │ %6s │ %8s │ %8s",
			st.Task, state, st.Hidden, epochs, trainErr, elapsed)
		lines = append(lines, tableCellStyle.Render(row))

		if st.Failure != "" {
			lines = append(lines, errorStyle.Render("    "+truncate(st.Failure, m.width-6)))
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRuntime() string {
	rt := m.status.Runtime

	cpuBar := m.renderProgressBar("CPU", rt.CPU.UsagePercent, 20)
	memBar := m.renderProgressBar("Memory", rt.Memory.UsagePercent, 20)

	load := labelStyle.Render(fmt.Sprintf("load %.2f %.2f %.2f", rt.Load.One, rt.Load.Five, rt.Load.Fifteen))
	lines := []string{fmt.Sprintf("  %s    %s    %s", cpuBar, memBar, load)}

	if rt.Process.PID != 0 {
		info := fmt.Sprintf("  pid %d │ rss %.1f MB │ heap %.1f MB │ cpu %.1f%% │ goroutines %d │ up %s",
			rt.Process.PID,
			float64(rt.Process.RSSBytes)/1024/1024,
			float64(rt.Process.HeapBytes)/1024/1024,
			rt.Process.CPUPercent,
			rt.Process.Goroutines,
			(time.Duration(rt.Process.UptimeSec) * time.Second).String(),
		)
		lines = append(lines, labelStyle.Render(info))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderProgressBar(label string, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := getProgressColor(percent)
	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderStorage() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Storage"))

	storage := m.status.Runtime.Storage

	// Sort paths for consistent display
	paths := make([]string, 0, len(storage))
	for path := range storage {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		disk := storage[path]
		freeGB := float64(disk.FreeBytes) / 1024 / 1024 / 1024
		totalGB := float64(disk.TotalBytes) / 1024 / 1024 / 1024

		pathDisplay := fmt.Sprintf("%-6s", truncate(path, 6))

		bar := m.renderProgressBar(pathDisplay, disk.UsagePercent, 20)
		info := fmt.Sprintf("(%.1f GB free / %.1f GB, history %.1f KB)", freeGB, totalGB, float64(disk.DataBytes)/1024)

		lines = append(lines, fmt.Sprintf("  %s  %s", bar, valueStyle.Render(info)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	records := m.history.Records

	var lines []string
	scope := "all tasks"
	if m.filter != "" {
		scope = string(m.filter)
	}
	lines = append(lines, sectionHeaderStyle.Render(fmt.Sprintf("  Recent predictions (%s)", scope)))
	if len(records) == 0 {
		lines = append(lines, helpStyle.Render("  none yet"))
		return strings.Join(lines, "\n")
	}

	header := fmt.Sprintf("  %-8s │ %-5s │ %-20s │ %6s │ %-9s │ %s",
		"Time", "Task", "Result", "Conf", "Source", "Image")
	lines = append(lines, tableHeaderStyle.Render(header))

	start := m.tableOffset
	if start >= len(records) {
		start = 0
	}
	end := min(start+maxVisibleRows, len(records))

	for _, r := range records[start:end] {
		conf := lipgloss.NewStyle().
			Foreground(getConfidenceColor(r.Confidence)).
			Render(fmt.Sprintf("%5.1f%%", r.Confidence*100))

		source := fmt.Sprintf("%-9s", r.Source)
		if r.Source == classify.SourceHeuristic {
			source = heuristicStyle.Render(source)
		}

		row := fmt.Sprintf("  %-8s │ %-5s │ %-20s │ %s │ %s │ %s",
			r.CreatedAt.Local().Format("15:04:05"),
			r.Task,
			truncate(r.Label, 20),
			conf,
			source,
			truncate(r.Image, 24),
		)
		lines = append(lines, tableCellStyle.Render(row))
	}

	if len(records) > maxVisibleRows {
		scrollInfo := fmt.Sprintf("  [%d-%d of %d shown, %d stored]", start+1, end, len(records), m.history.Total)
		lines = append(lines, helpStyle.Render(scrollInfo))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if m.status == nil {
		return ""
	}

	records := "off"
	if m.status.History != nil {
		records = formatNumber(m.status.History.Records)
	}
	updated := m.lastUpdated.Format("15:04:05")

	return helpStyle.Render(fmt.Sprintf(
		"  Version: %s │ History: %s │ Updated: %s",
		m.status.Version,
		records,
		updated,
	))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func formatNumber(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d", n)
}
