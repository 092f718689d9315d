package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/server"
)

type statusMsg struct {
	data *server.StatusResponse
	err  error
}

// historyMsg carries the filter it was fetched with so replies that
// arrive after the filter changed can be dropped.
type historyMsg struct {
	task classify.Task
	data *server.HistoryResponse
	err  error
}

type tickMsg time.Time

// apiClient reads the server's status and history endpoints.
type apiClient struct {
	baseURL  string
	http     *http.Client
	user     string
	password string
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL:  cfg.ServerURL,
		http:     &http.Client{Timeout: 5 * time.Second},
		user:     cfg.User,
		password: cfg.Password,
	}
}

// getJSON decodes a 200 reply into out and returns the status code.
func (c *apiClient) getJSON(path string, query url.Values, out any) (int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func fetchStatus(c *apiClient) tea.Cmd {
	return func() tea.Msg {
		var status server.StatusResponse
		code, err := c.getJSON("/status", nil, &status)
		switch {
		case err != nil:
			return statusMsg{err: err}
		case code != http.StatusOK:
			return statusMsg{err: fmt.Errorf("server returned status %d", code)}
		}
		return statusMsg{data: &status}
	}
}

// fetchHistory reads the latest predictions, optionally for one task. A
// server without history answers 404, which yields an empty message.
func fetchHistory(c *apiClient, limit int, task classify.Task) tea.Cmd {
	return func() tea.Msg {
		q := url.Values{"limit": {strconv.Itoa(limit)}}
		if task != "" {
			q.Set("task", string(task))
		}

		var history server.HistoryResponse
		code, err := c.getJSON("/history", q, &history)
		switch {
		case err != nil:
			return historyMsg{task: task, err: err}
		case code == http.StatusNotFound:
			return historyMsg{task: task}
		case code != http.StatusOK:
			return historyMsg{task: task, err: fmt.Errorf("server returned status %d", code)}
		}
		return historyMsg{task: task, data: &history}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
