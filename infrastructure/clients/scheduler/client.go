package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"

	"github.com/robfig/cron/v3"
)

const maxErrorBody = 512

// Config locates the QStash-compatible scheduler.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client registers one-shot cron triggers with the external scheduler. It never returns errors:
// every outcome is reported as a repository.DispatchResult.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// CronFor renders t as "<minute> <hour> <day> <month> *" in UTC. Seconds are dropped.
func CronFor(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%d %d %d %d *", u.Minute(), u.Hour(), u.Day(), int(u.Month()))
}

// nextFire returns when expr fires next after now, validating the expression on the way.
func nextFire(expr string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now.UTC()), nil
}

type registerResponse struct {
	ScheduleID string `json:"scheduleId"`
}

func (c *Client) Register(ctx context.Context, req repository.RegisterRequest) repository.DispatchResult {
	now := c.now().UTC()
	if !req.ScheduledFor.After(now) {
		return failure("scheduled time must be in the future")
	}
	if _, err := url.ParseRequestURI(req.Destination); err != nil {
		return failure(fmt.Sprintf("invalid destination: %v", err))
	}

	expr := CronFor(req.ScheduledFor)
	next, err := nextFire(expr, now)
	if err != nil {
		return failure(fmt.Sprintf("invalid cron expression %q: %v", expr, err))
	}
	// The expression carries no year: it must fire exactly at the target minute next.
	target := req.ScheduledFor.UTC().Truncate(time.Minute)
	switch {
	case next.Before(target):
		return failure("scheduled time is more than a year ahead")
	case next.After(target):
		return failure("scheduled time is too close to now to register a minute-precision trigger")
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return failure(fmt.Sprintf("encode trigger body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/schedules/"+req.Destination, bytes.NewReader(body))
	if err != nil {
		return failure(err.Error())
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Upstash-Cron", expr)
	if req.ScheduleID != "" {
		httpReq.Header.Set("Upstash-Schedule-Id", req.ScheduleID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("destination", req.Destination).Warn("scheduler register request failed")
		return failure(err.Error())
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(statusMessage(resp.StatusCode, raw))
	}

	var out registerResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ScheduleID == "" {
		if req.ScheduleID == "" {
			return failure("scheduler response did not include a schedule id")
		}
		out.ScheduleID = req.ScheduleID
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"scheduleId": out.ScheduleID,
		"cron":       expr,
		"fireAt":     next,
	}).Info("Trigger registered")
	return repository.DispatchResult{ScheduleID: out.ScheduleID, Success: true}
}

// Cancel deletes a registration. Unknown ids count as cancelled.
func (c *Client) Cancel(ctx context.Context, scheduleID string) repository.DispatchResult {
	if scheduleID == "" {
		return failure("schedule id is required")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v2/schedules/"+url.PathEscape(scheduleID), nil)
	if err != nil {
		return failure(err.Error())
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("scheduleId", scheduleID).Warn("scheduler cancel request failed")
		return failure(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return repository.DispatchResult{ScheduleID: scheduleID, Success: true, Message: "schedule already removed"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return failure(statusMessage(resp.StatusCode, raw))
	}
	return repository.DispatchResult{ScheduleID: scheduleID, Success: true}
}

func failure(msg string) repository.DispatchResult {
	return repository.DispatchResult{Success: false, Message: msg}
}

func statusMessage(code int, raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Sprintf("scheduler responded %d: %s", code, body.Error)
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	if text == "" {
		text = http.StatusText(code)
	}
	return fmt.Sprintf("scheduler responded %d: %s", code, text)
}
