package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"college-portal-api/importer"

	"github.com/tidwall/gjson"
)

const extractPrompt = `Extract every dated entry from the academic calendar text below.
Reply with a JSON array only. Each element must be an object with the keys
"date" (YYYY-MM-DD), "endDate" (YYYY-MM-DD or empty), "description" and
"type" (one of "Start of Semester", "Mid-Semester Exams", "End-Semester Exams",
"Holiday", "Other").

Calendar text:
`

// EventExtractorService asks an OpenAI-compatible chat completion endpoint
// to turn calendar text into events.
type EventExtractorService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewEventExtractorService(baseURL, apiKey, model string, timeout time.Duration) *EventExtractorService {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &EventExtractorService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *EventExtractorService) ExtractEvents(ctx context.Context, text string) ([]importer.ExtractedEvent, error) {
	log.Printf("EventExtractorService - ExtractEvents (%d chars)", len(text))

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body := struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		Temperature float64   `json:"temperature"`
	}{
		Model: s.model,
		Messages: []message{
			{Role: "system", Content: "You convert academic calendars into structured JSON."},
			{Role: "user", Content: extractPrompt + text},
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extractor: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extractor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, fmt.Errorf("extractor returned %d: %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content").String()
	return parseExtractedEvents(content)
}

// parseExtractedEvents reads the JSON array out of a model reply, tolerating
// markdown fences and a wrapping {"events": [...]} object.
func parseExtractedEvents(content string) ([]importer.ExtractedEvent, error) {
	content = stripCodeFence(content)
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("extractor reply is not valid json")
	}

	list := gjson.Parse(content)
	if list.IsObject() {
		list = list.Get("events")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("extractor reply has no event array")
	}

	events := make([]importer.ExtractedEvent, 0)
	list.ForEach(func(_, item gjson.Result) bool {
		events = append(events, importer.ExtractedEvent{
			Date:        item.Get("date").String(),
			EndDate:     item.Get("endDate").String(),
			Description: item.Get("description").String(),
			Type:        item.Get("type").String(),
		})
		return true
	})
	return events, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
