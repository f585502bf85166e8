// Package llm provides the chat-completion client used to generate
// pharmacist care plans.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNotConfigured indicates no API key is set.
	ErrNotConfigured = errors.New("care plan generation is not configured")
	// ErrUnavailable indicates the provider could not be reached or
	// returned a non-success status.
	ErrUnavailable = errors.New("generation service unavailable")
	// ErrMalformedResponse indicates the provider replied with a body
	// that does not match the chat completion schema.
	ErrMalformedResponse = errors.New("malformed generation response")
	// ErrEmptyCompletion indicates the provider returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)

const systemPrompt = "You are a clinical pharmacist assistant helping to generate care plans for specialty pharmacy patients."

// Config holds the provider connection settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "llm").Logger(),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// PromptInput carries the patient and order details interpolated into the
// generation prompt.
type PromptInput struct {
	PatientFirstName     string
	PatientLastName      string
	PatientMRN           string
	ReferringProvider    string
	ReferringProviderNPI string
	PrimaryDiagnosis     string
	MedicationName       string
	AdditionalDiagnoses  []string
	MedicationHistory    []string
	PatientRecords       string
}

// BuildPrompt renders the user prompt. The output is deterministic for a
// given input.
func BuildPrompt(in PromptInput) string {
	additionalDx := "None"
	if len(in.AdditionalDiagnoses) > 0 {
		additionalDx = strings.Join(in.AdditionalDiagnoses, ", ")
	}
	medHistory := "None"
	if len(in.MedicationHistory) > 0 {
		medHistory = strings.Join(in.MedicationHistory, ", ")
	}
	records := in.PatientRecords
	if records == "" {
		records = "No additional records provided"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a clinical care plan for the following patient:\n\n")
	fmt.Fprintf(&b, "Patient: %s %s\n", in.PatientFirstName, in.PatientLastName)
	fmt.Fprintf(&b, "MRN: %s\n", in.PatientMRN)
	fmt.Fprintf(&b, "Referring Provider: %s (NPI: %s)\n", in.ReferringProvider, in.ReferringProviderNPI)
	fmt.Fprintf(&b, "Primary Diagnosis (ICD-10): %s\n", in.PrimaryDiagnosis)
	fmt.Fprintf(&b, "Medication: %s\n", in.MedicationName)
	fmt.Fprintf(&b, "Additional Diagnoses: %s\n", additionalDx)
	fmt.Fprintf(&b, "Medication History: %s\n\n", medHistory)
	fmt.Fprintf(&b, "Patient Records:\n%s\n\n", records)
	b.WriteString(`Please generate a care plan with ONLY the following four sections:

1. Problem List / Drug Therapy Problems (DTPs)
2. Goals (SMART)
3. Pharmacist Interventions / Plan
4. Monitoring Plan & Lab Schedule
`)
	return b.String()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces the care plan text for the given input. Each call makes
// at most one provider request; callers decide whether to retry.
func (c *Client) Generate(ctx context.Context, in PromptInput) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(in)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("generation request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Completions are bounded by max_tokens; 1MB is generous headroom.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("generation request rejected")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrMalformedResponse
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyCompletion
	}

	c.log.Info().Dur("duration", time.Since(start)).Msg("care plan generated")
	return content, nil
}
