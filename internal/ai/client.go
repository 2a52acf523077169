package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/scheduler"
)

// ProposedEntry is one assignment suggested by the text-generation
// collaborator. Any payload that does not decode to a non-empty list of
// these three identifiers is treated as invalid.
type ProposedEntry struct {
	CourseCode string `json:"course_code"`
	RoomID     string `json:"room_id"`
	TimeSlotID string `json:"timeslot_id"`
}

// Config points the client at an OpenAI-compatible chat completion endpoint.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client talks to the external AI collaborator. Every failure mode returns
// an error; the orchestrator turns errors into a fallback, never a fatal.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewClient builds a client with an explicit request timeout so the fallback
// path is never blocked indefinitely.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ProposeTimetable describes the scheduling problem in natural language and
// asks the collaborator for a full assignment.
func (c *Client) ProposeTimetable(ctx context.Context, snap *scheduler.Snapshot) ([]ProposedEntry, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("ai endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a university timetabling assistant. Reply with a JSON array only."},
			{Role: "user", Content: BuildPrompt(snap)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ai collaborator: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read ai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai collaborator returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(payload, &chat); err != nil {
		return nil, fmt.Errorf("decode ai response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("ai response contains no choices")
	}

	entries, err := ParseProposal(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.logger.Sugar().Debugw("ai proposal received", "entries", len(entries))
	return entries, nil
}

// BuildPrompt renders the domain snapshot as a textual problem description:
// courses with enrollment and department, rooms with capacity and type,
// ordered slots, and lecturer availability windows.
func BuildPrompt(snap *scheduler.Snapshot) string {
	var b strings.Builder
	b.WriteString("Assign every course to a room and a time slot without double-booking.\n\nCourses:\n")
	for _, course := range snap.Courses {
		fmt.Fprintf(&b, "- %s (%s, year %d, %d students", course.Code, course.Department, course.YearLevel, course.EnrollmentCount)
		if course.RequiresLab {
			b.WriteString(", needs a lab")
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nRooms:\n")
	for _, room := range snap.Rooms {
		fmt.Fprintf(&b, "- %s (id %s, %s, capacity %d)\n", room.Name, room.ID, room.Type, room.Capacity)
	}
	b.WriteString("\nTime slots:\n")
	for _, slot := range snap.Slots {
		fmt.Fprintf(&b, "- id %s: %s-%s\n", slot.ID, slot.StartTime, slot.EndTime)
	}
	b.WriteString("\nLecturer availability:\n")
	for _, lecturer := range snap.Lecturers {
		windows := lecturer.AvailabilityWindows()
		if len(windows) == 0 {
			fmt.Fprintf(&b, "- %s (%s): all working hours\n", lecturer.Name, lecturer.Department)
			continue
		}
		parts := make([]string, 0, len(windows))
		for _, w := range windows {
			parts = append(parts, fmt.Sprintf("%s %s-%s", w.Day, w.Start, w.End))
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", lecturer.Name, lecturer.Department, strings.Join(parts, ", "))
	}
	b.WriteString("\nReply with a JSON array of objects {\"course_code\", \"room_id\", \"timeslot_id\"}, one per course.")
	return b.String()
}

// ParseProposal decodes the reply content into proposed entries, tolerating
// markdown code fences around the JSON array.
func ParseProposal(content string) ([]ProposedEntry, error) {
	trimmed := strings.TrimSpace(content)
	if idx := strings.Index(trimmed, "["); idx >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > idx {
			trimmed = trimmed[idx : end+1]
		}
	}

	var entries []ProposedEntry
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, fmt.Errorf("ai reply is not a JSON entry list: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("ai reply contains no entries")
	}
	return entries, nil
}
