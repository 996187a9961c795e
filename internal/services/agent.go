package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tapp-club-backend/internal/errs"
)

const agentRequestTimeout = 30 * time.Second

// AgentService proxies prompts to the external search-grounded model
// provider. Calls are single-shot; provider failures of any kind come
// back as one upstream error and are never retried.
type AgentService struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

// NewAgentService creates a new agent service
func NewAgentService(endpoint, apiKey, model string) *AgentService {
	return &AgentService{
		client:   &http.Client{Timeout: agentRequestTimeout},
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
	}
}

type agentContent struct {
	Parts []agentPart `json:"parts"`
}

type agentPart struct {
	Text string `json:"text"`
}

type agentTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generateRequest struct {
	Contents []agentContent `json:"contents"`
	Tools    []agentTool    `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content agentContent `json:"content"`
	} `json:"candidates"`
}

// Ask sends the prompt to the provider with search grounding enabled and
// returns the concatenated response text.
func (s *AgentService) Ask(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errs.InvalidArgument("request prompt is required")
	}
	if s.apiKey == "" {
		return "", errs.Unavailable("agent is not configured")
	}

	body := generateRequest{
		Contents: []agentContent{{Parts: []agentPart{{Text: prompt}}}},
		Tools:    []agentTool{{GoogleSearch: &struct{}{}}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", errs.Internal("failed to encode agent request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.endpoint, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errs.Internal("failed to build agent request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errs.Upstream("agent provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Upstream(fmt.Sprintf("agent provider returned status %d", resp.StatusCode), nil)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errs.Upstream("failed to decode agent provider response", err)
	}
	if len(out.Candidates) == 0 {
		return "", errs.Upstream("agent provider returned no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", errs.Upstream("agent provider returned no content", nil)
	}
	return sb.String(), nil
}
