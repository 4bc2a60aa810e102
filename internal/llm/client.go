package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"time"
)

// completion is a vendor answer before any checks are applied.
type completion struct {
	text  string
	model string
	stop  string
	usage Usage
}

// vendorAPI is the part of a provider that differs between vendors.
type vendorAPI interface {
	complete(ctx context.Context, model string, req Request) (completion, error)
	// status extracts the HTTP status and Retry-After delay carried by an
	// SDK error. code is zero for errors that never reached the vendor.
	status(err error) (code int, retryAfter time.Duration)
}

// Client is a Provider backed by one vendor API.
type Client struct {
	vendor string
	model  string
	api    vendorAPI
}

func (c *Client) ModelID() string { return c.model }

// Vendor names the API behind the client, e.g. "anthropic".
func (c *Client) Vendor() string { return c.vendor }

func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	out, err := c.api.complete(ctx, c.model, req)
	if err != nil {
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			return nil, err
		}
		code, retryAfter := c.api.status(err)
		return nil, vendorError(err, code, retryAfter)
	}

	resp := &Response{
		Content:    json.RawMessage(out.text),
		Usage:      out.usage,
		Model:      cmp.Or(out.model, c.model),
		StopReason: cmp.Or(out.stop, StopEnd),
	}
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	if req.Schema == nil {
		return resp, nil
	}

	// A cut-off JSON document can never validate.
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	content, err := validateResponse(req.Schema, resp.Content)
	if err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}

// resolveModel expands a short alias; unknown names are used verbatim.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
