package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 11_0_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.67 Safari/537.36"

// GoogleProvider calls the public web translate endpoint. Every failure mode
// (network, status, response shape) surfaces as an error; the pipeline maps
// them all to an empty translation, since translation failure is non-fatal.
type GoogleProvider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewGoogleProvider(baseURL string) *GoogleProvider {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	return &GoogleProvider{
		BaseURL:   baseURL,
		UserAgent: defaultUserAgent,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *GoogleProvider) Translate(ctx context.Context, from, to, text string) (string, error) {
	if p.Client == nil {
		return "", errors.New("google: http client is nil")
	}

	v := url.Values{}
	v.Set("client", "webapp")
	v.Set("sl", from)
	v.Set("tl", to)
	v.Set("hl", to)
	for _, dt := range []string{"at", "bd", "ex", "ld", "md", "qca", "rw", "rm", "sos", "ss", "t"} {
		v.Add("dt", dt)
	}
	v.Set("otf", "2")
	v.Set("ssel", "0")
	v.Set("tsel", "0")
	v.Set("kc", "3")
	v.Set("tk", Token(text))
	v.Set("q", text)

	u := strings.TrimRight(p.BaseURL, "/") + "/translate_a/single?" + v.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google: status %d", resp.StatusCode)
	}

	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("google: decode response: %w", err)
	}
	return extractTranslation(payload)
}

// extractTranslation pulls payload[0][0][0] out of the nested response array.
func extractTranslation(payload []any) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("google: empty response")
	}
	segments, ok := payload[0].([]any)
	if !ok || len(segments) == 0 {
		return "", errors.New("google: unexpected response shape")
	}
	first, ok := segments[0].([]any)
	if !ok || len(first) == 0 {
		return "", errors.New("google: unexpected response shape")
	}
	out, ok := first[0].(string)
	if !ok {
		return "", errors.New("google: unexpected response shape")
	}
	return out, nil
}
