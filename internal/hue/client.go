// Package hue implements a minimal client for the bridge's v1 REST API,
// covering the schedule store and direct state application.
package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client talks to a single bridge over the v1 API.
type Client struct {
	address    string
	username   string
	httpClient *http.Client
}

// NewClient creates a new bridge client.
func NewClient(address, username string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		address:  address,
		username: username,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Address returns the bridge address.
func (c *Client) Address() string {
	return c.address
}

// Username returns the API username. Command addresses embed it.
func (c *Client) Username() string {
	return c.username
}

func (c *Client) v1URL(path string) string {
	return fmt.Sprintf("http://%s/api/%s/%s", c.address, c.username, path)
}

// request performs one v1 round-trip and returns the raw response body.
// Errors returned here without an APIError inside are transport failures.
func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.v1URL(path), reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}

// checkResults parses a mutating call's success/error array and returns
// the results. The first error entry is surfaced as an APIError.
func checkResults(data []byte) ([]apiResult, error) {
	var results []apiResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("unexpected bridge response %q: %w", string(data), err)
	}

	for _, res := range results {
		if res.Error != nil {
			return nil, &APIError{
				Type:        res.Error.Type,
				Address:     res.Error.Address,
				Description: res.Error.Description,
			}
		}
	}

	if len(results) == 0 {
		return nil, &APIError{Description: "empty response"}
	}

	return results, nil
}

// GetSchedules fetches all schedules stored on the bridge, keyed by id.
func (c *Client) GetSchedules(ctx context.Context) (map[string]Schedule, error) {
	data, err := c.request(ctx, http.MethodGet, "schedules", nil)
	if err != nil {
		return nil, err
	}

	var schedules map[string]Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}

	return schedules, nil
}

// CreateSchedule stores a new schedule on the bridge and returns the id
// the bridge assigned to it.
func (c *Client) CreateSchedule(ctx context.Context, sched Schedule) (string, error) {
	data, err := c.request(ctx, http.MethodPost, "schedules", sched)
	if err != nil {
		return "", err
	}

	results, err := checkResults(data)
	if err != nil {
		return "", err
	}

	for _, res := range results {
		if len(res.Success) == 0 {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(res.Success, &fields); err != nil {
			continue
		}
		raw, ok := fields["id"]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			return id, nil
		}
		// Some firmware versions report the id as a bare number.
		var num json.Number
		if err := json.Unmarshal(raw, &num); err == nil {
			return num.String(), nil
		}
	}

	return "", &APIError{Description: "create response carried no schedule id"}
}

// UpdateSchedule replaces the schedule with the given id.
func (c *Client) UpdateSchedule(ctx context.Context, id string, sched Schedule) error {
	data, err := c.request(ctx, http.MethodPut, "schedules/"+id, sched)
	if err != nil {
		return err
	}
	_, err = checkResults(data)
	return err
}

// DeleteSchedule removes the schedule with the given id.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	data, err := c.request(ctx, http.MethodDelete, "schedules/"+id, nil)
	if err != nil {
		return err
	}
	_, err = checkResults(data)
	return err
}

// SetScheduleStatus toggles a schedule between enabled and disabled
// without touching the rest of the record.
func (c *Client) SetScheduleStatus(ctx context.Context, id string, enabled bool) error {
	status := StatusDisabled
	if enabled {
		status = StatusEnabled
	}

	data, err := c.request(ctx, http.MethodPut, "schedules/"+id, map[string]string{"status": status})
	if err != nil {
		return err
	}
	_, err = checkResults(data)
	return err
}

// SetLightState applies a state payload to a single light, passing the
// body through verbatim.
func (c *Client) SetLightState(ctx context.Context, lightID string, state map[string]any) error {
	data, err := c.request(ctx, http.MethodPut, fmt.Sprintf("lights/%s/state", lightID), state)
	if err != nil {
		return err
	}
	if _, err := checkResults(data); err != nil {
		return err
	}

	log.Debug().Str("light", lightID).Interface("state", state).Msg("Light state applied")
	return nil
}
