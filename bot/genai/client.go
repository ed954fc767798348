// Package genai talks to the Gemini generateContent API. All three calls
// degrade gracefully: classification falls back to the fallback category,
// reply generation falls back to a fixed acknowledgment, and sentiment
// rating returns an error the scorer substitutes away.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/apex/log"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// FallbackReply is the acknowledgment used when reply generation fails.
const FallbackReply = "Thank you for reporting your issue. Our team will look into it soon."

const replySystemPrompt = "You are a polite and empathetic AI assistant working for the municipal grievance redressal system. " +
	"Your task is to reply briefly and professionally to citizens' complaints, " +
	"acknowledging the issue and assuring timely action. Keep it under 2 sentences."

// Client represents a Gemini API client.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Gemini client for the given model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// Classification is the structured output of ExtractIssueAndLocation.
type Classification struct {
	Issue    string `json:"issue"`
	Location string `json:"location"`
}

type sentimentResult struct {
	Stars int `json:"stars"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractIssueAndLocation classifies a grievance text into one of the given
// categories and pulls out the mentioned location. It never fails: any
// transport or parsing problem yields the fallback category and "unknown".
func (c *Client) ExtractIssueAndLocation(ctx context.Context, text string, categories []string, fallback string) Classification {
	prompt := fmt.Sprintf(`Analyze this grievance: %q

Classify the issue into one of these types: %s.
If the issue doesn't fit any type, classify it as %q.

Return a short structured JSON with keys:
- issue: The best matching issue type from the list.
- location: The location/place mentioned (e.g., "Main Street, near City Hall"), or "unknown" if not found.`,
		text, strings.Join(categories, ", "), fallback)

	fallbackResult := Classification{Issue: fallback, Location: "unknown"}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		log.Errorf("Classification call failed: %v", err)
		return fallbackResult
	}

	var result Classification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		log.Errorf("Failed to parse classification response %q: %v", raw, err)
		return fallbackResult
	}

	valid := false
	for _, cat := range categories {
		if result.Issue == cat {
			valid = true
			break
		}
	}
	if !valid {
		result.Issue = fallback
	}
	if strings.TrimSpace(result.Location) == "" {
		result.Location = "unknown"
	}
	return result
}

// Reply generates the polite acknowledgment for a complaint, falling back
// to FallbackReply on any failure.
func (c *Client) Reply(ctx context.Context, text string) string {
	raw, err := c.generate(ctx, replySystemPrompt+"\nCitizen complaint: "+text)
	if err != nil {
		log.Errorf("Reply generation failed: %v", err)
		return FallbackReply
	}
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return FallbackReply
	}
	return reply
}

// RateSentiment asks the model for a 1..5 star severity rating of the text.
// Satisfies priority.SentimentRater.
func (c *Client) RateSentiment(ctx context.Context, text string) (int, error) {
	prompt := fmt.Sprintf(`Rate the emotional severity of this citizen complaint on a scale of 1 to 5 stars,
where 1 is calm and 5 is extremely distressed or urgent.

Complaint: %q

Output the answer as JSON:
{"stars": <1-5>}`, text)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return 0, err
	}

	var result sentimentResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return 0, fmt.Errorf("failed to parse sentiment response %q: %w", raw, err)
	}
	if result.Stars < 1 || result.Stars > 5 {
		return 0, fmt.Errorf("sentiment rating %d outside 1..5", result.Stars)
	}
	return result.Stars, nil
}

// generate performs one generateContent call and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

var jsonFenceRegex = regexp.MustCompile("```(?:json|JSON)?\\s*\\n?([\\s\\S]*?)\\n?```")

// extractJSON pulls a JSON object out of a model reply that may wrap it in
// markdown code fences or surrounding prose.
func extractJSON(text string) string {
	if matches := jsonFenceRegex.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
