package credits

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
)

// RemoteLedger talks to a credits service:
//
//	GET  {base}/credits/{email}          -> {"credits": n}
//	POST {base}/credits/{email}/consume  {"amount","reference"} -> {"credits": n}
//	POST {base}/credits/{email}/grant    {"amount","reference"} -> {"credits": n}
//
// The service answers 402 when a consume would overdraw.
type RemoteLedger struct {
	base   string
	token  string
	client *http.Client
}

func NewRemoteLedger(baseURL, token string, client *http.Client) *RemoteLedger {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteLedger{base: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

type remoteBalance struct {
	Credits *int64 `json:"credits"`
}

func (l *RemoteLedger) Balance(ctx context.Context, email string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.do(ctx, http.MethodGet, l.endpoint(e, ""), nil)
}

func (l *RemoteLedger) Grant(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.do(ctx, http.MethodPost, l.endpoint(e, "grant"), map[string]any{"amount": amount, "reference": reference})
}

func (l *RemoteLedger) Consume(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.do(ctx, http.MethodPost, l.endpoint(e, "consume"), map[string]any{"amount": amount, "reference": reference})
}

func (l *RemoteLedger) endpoint(email, action string) string {
	u := l.base + "/credits/" + url.PathEscape(email)
	if action != "" {
		u += "/" + action
	}
	return u
}

func (l *RemoteLedger) do(ctx context.Context, method, endpoint string, payload any) (int64, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode credits request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("build credits request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		return 0, ErrInsufficientCredits
	case resp.StatusCode == http.StatusBadRequest:
		return 0, ErrInvalidEmail
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out remoteBalance
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Credits == nil {
		return 0, fmt.Errorf("%w: response missing credits", ErrUnavailable)
	}
	return *out.Credits, nil
}
