package openai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/kpcwatson/CI-Utils/internal/config"
    "github.com/kpcwatson/CI-Utils/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    key   string
    model string
    http  *http.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{ key: cfg.OpenAIKey, model: cfg.OpenAIModel, http: &http.Client{ Timeout: cfg.OpenAITimeout }, log: log }
}

// Highlights produces a short plain-text intro paragraph for the release
// notes. Optional feature: callers treat any error as "no intro".
func (c *Client) Highlights(ctx context.Context, issues []domain.Issue) (string, error) {
    if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
    lines := make([]string, 0, len(issues))
    for _, is := range issues {
        lines = append(lines, fmt.Sprintf("%s (%s, %s): %s", is.Key, is.Type.Name, is.Priority.Name, is.Summary))
    }
    body := map[string]any{
        "model": c.model,
        "messages": []map[string]string{
            {"role":"system","content":"You write release notes. Given a list of shipped tickets, return a 2-3 sentence plain-text summary of what this build delivers. No markdown, no ticket keys."},
            {"role":"user","content": strings.Join(lines, "\n")},
        },
        "temperature": 0.2,
    }
    b, _ := json.Marshal(body)
    req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(b))
    req.Header.Set("Authorization", "Bearer "+c.key)
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return "", err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 { return "", fmt.Errorf("openai status=%d", resp.StatusCode) }
    var out struct{ Choices []struct{ Message struct{ Content string `json:"content"` } `json:"message"` } `json:"choices"` }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return "", err }
    if len(out.Choices) == 0 { return "", errors.New("openai: no choices") }
    return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
