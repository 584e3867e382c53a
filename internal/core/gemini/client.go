package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("empty response")

// Prompt is one generate call: a system instruction plus the user turn.
type Prompt struct {
	System string
	User   string
	JSON   bool
}

type Client struct {
	c       *genai.Client
	model   string
	backoff time.Duration
}

func New(apiKey, model string, timeout time.Duration) (*Client, error) {
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	hc := &http.Client{Transport: tr, Timeout: timeout + 5*time.Second}
	cl, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Client{c: cl, model: model, backoff: 300 * time.Millisecond}, nil
}

func (g *Client) Close() error { return nil }

func (g *Client) Model() string { return g.model }

// Generate returns the text of the first non-empty reply.
func (g *Client) Generate(ctx context.Context, p Prompt) (string, error) {
	temp := float32(0.9)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
	}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}
	return g.callOnce(ctx, contents, cfg)
}

func (g *Client) callOnce(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := g.c.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			lastErr = err
			if retriable(err) && sleep(ctx, time.Duration(i+1)*g.backoff) {
				continue
			}
			return "", err
		}
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text, nil
		}
		lastErr = ErrEmptyResponse
		if !sleep(ctx, time.Duration(i+1)*g.backoff) {
			break
		}
	}
	return "", lastErr
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	s := err.Error()
	return strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "RST_STREAM") ||
		strings.Contains(s, "connection reset")
}
