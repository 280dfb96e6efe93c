// Package calendar mirrors bookings into the studio calendar. Every failure
// here is non-fatal: the lifecycle records it and moves on.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"studiobooking/internal/domain"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Result struct {
	Skipped bool
	EventID string
}

type Config struct {
	BaseURL    string
	APIKey     string
	CalendarID string
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) configured() bool {
	return c != nil && c.cfg.BaseURL != "" && c.cfg.APIKey != "" && c.cfg.CalendarID != ""
}

type eventBody struct {
	Summary string `json:"summary"`
	Date    string `json:"date"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Sync creates, updates or deletes the calendar event for a booking. The
// event id is derived from the booking id so retries are idempotent. When
// the calendar is not configured the sync is reported as skipped, not
// failed.
func (c *Client) Sync(ctx context.Context, b *domain.Booking, action Action) (Result, error) {
	if !c.configured() {
		return Result{Skipped: true}, nil
	}

	eventID := fmt.Sprintf("booking-%d", b.ID)
	url := fmt.Sprintf("%s/calendars/%s/events/%s", c.cfg.BaseURL, c.cfg.CalendarID, eventID)

	var req *http.Request
	var err error
	if action == ActionDelete {
		req, err = http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	} else {
		body := eventBody{
			Summary: fmt.Sprintf("Fotózás #%d (%s)", b.ID, b.Status),
			Date:    b.BookingDate.Format("2006-01-02"),
			Notes:   b.Notes,
		}
		if b.TimeSlot != nil {
			body.Start = b.TimeSlot.StartTime
			body.End = b.TimeSlot.EndTime
		}
		var payload []byte
		payload, err = json.Marshal(body)
		if err == nil {
			req, err = http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
		}
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calendar call failed: %w", err)
	}
	defer resp.Body.Close()

	// Deleting an event that never made it to the calendar is fine.
	if action == ActionDelete && resp.StatusCode == http.StatusNotFound {
		return Result{EventID: eventID}, nil
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("calendar returned %d for %s", resp.StatusCode, action)
	}
	return Result{EventID: eventID}, nil
}
