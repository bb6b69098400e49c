package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// TransportError is a network failure or non-success response from the
// remote store. It is always caught at the operation boundary and triggers a
// revert of the specific mutation it interrupted.
type TransportError struct {
	Status  int    // 0 for network-level failures
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote api: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the sign-up-sheets REST surface. Every call carries the
// fixed basic-auth credential.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient creates a Client for the given REST root and credential.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do performs one request and decodes the JSON response into out (when out
// is non-nil). Responses outside 2xx become *TransportError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decodeErrorMessage(data)
		appLog.Error("remote api error", nil,
			"method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return &TransportError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}

func decodeErrorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}

// === schedules ===============================================

// listEnvelope decodes either a wrapped object or a bare JSON array.
func listEnvelope[T any](data json.RawMessage, key string) []T {
	var bare []T
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil
	}
	if inner, ok := wrapped[key]; ok {
		if err := json.Unmarshal(inner, &bare); err == nil {
			return bare
		}
	}
	return nil
}

// itemEnvelope decodes either a bare object or one wrapped under key.
func itemEnvelope[T any](data json.RawMessage, key string) (T, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			var item T
			if err := json.Unmarshal(inner, &item); err == nil {
				return item, nil
			}
		}
	}
	var item T
	err := json.Unmarshal(data, &item)
	return item, err
}

// GetSchedules lists every remote schedule.
func (c *Client) GetSchedules(ctx context.Context) ([]Schedule, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/schedules", nil, &raw); err != nil {
		return nil, err
	}
	return listEnvelope[Schedule](raw, "schedules"), nil
}

// CreateSchedule creates a new per-day schedule and returns it.
func (c *Client) CreateSchedule(ctx context.Context, payload NewSchedule) (Schedule, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/schedules", payload, &raw); err != nil {
		return Schedule{}, err
	}
	sch, err := itemEnvelope[Schedule](raw, "schedule")
	if err != nil {
		return Schedule{}, &TransportError{Err: err}
	}
	return sch, nil
}

// UpdateSchedule replaces title/start/end of a schedule.
func (c *Client) UpdateSchedule(ctx context.Context, id int64, payload NewSchedule) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/schedules/%d", id), payload, nil)
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/schedules/%d", id), nil, nil)
}

// === tasks ===================================================

// GetTasks lists the tasks of one schedule.
func (c *Client) GetTasks(ctx context.Context, sheetID int64) ([]Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schedules/%d/tasks", sheetID), nil, &raw); err != nil {
		return nil, err
	}
	return listEnvelope[Task](raw, "tasks"), nil
}

// CreateTask creates a task on a schedule and returns it.
func (c *Client) CreateTask(ctx context.Context, sheetID int64, payload NewTask) (Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/schedules/%d/tasks", sheetID), payload, &raw); err != nil {
		return Task{}, err
	}
	task, err := itemEnvelope[Task](raw, "task")
	if err != nil {
		return Task{}, &TransportError{Err: err}
	}
	return task, nil
}

// UpdateTask applies a partial update to one task.
func (c *Client) UpdateTask(ctx context.Context, sheetID, taskID int64, payload TaskUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/schedules/%d/tasks/%d", sheetID, taskID), payload, nil)
}

// DeleteTask removes a task from a schedule.
func (c *Client) DeleteTask(ctx context.Context, sheetID, taskID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/schedules/%d/tasks/%d", sheetID, taskID), nil, nil)
}

// === signups =================================================

// GetSignups lists the signups of one task.
func (c *Client) GetSignups(ctx context.Context, taskID int64) ([]Signup, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d/signups", taskID), nil, &raw); err != nil {
		return nil, err
	}
	return listEnvelope[Signup](raw, "signups"), nil
}

// CreateSignup adds one person to a task and returns the created signup.
func (c *Client) CreateSignup(ctx context.Context, taskID int64, payload NewSignup) (Signup, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/signups", taskID), payload, &raw); err != nil {
		return Signup{}, err
	}
	su, err := itemEnvelope[Signup](raw, "signup")
	if err != nil {
		return Signup{}, &TransportError{Err: err}
	}
	return su, nil
}

// DeleteSignup removes one signup from a task.
func (c *Client) DeleteSignup(ctx context.Context, taskID, signupID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d/signups/%d", taskID, signupID), nil, nil)
}

// === directory ===============================================

// ListVolunteers returns the directory entries for one role
// ("bestuur" or "vrijwilliger").
func (c *Client) ListVolunteers(ctx context.Context, role string) ([]Volunteer, error) {
	var out []Volunteer
	path := "/volunteers?role=" + url.QueryEscape(role)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTeams returns the youth teams.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var out []Team
	if err := c.do(ctx, http.MethodGet, "/teams", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlayers returns the players of one youth team.
func (c *Client) ListPlayers(ctx context.Context, teamID int64) ([]Player, error) {
	var out []Player
	path := fmt.Sprintf("/players-by-team?team_id=%d", teamID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
