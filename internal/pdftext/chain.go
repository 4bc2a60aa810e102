package pdftext

import (
	"context"
	"errors"
	"strings"
)

// Chain tries each extractor in order and returns the first usable result.
// It moves on only when a backend found no text or was unavailable; any
// other failure stops the chain.
type Chain []Extractor

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name()
	}
	return strings.Join(names, ">")
}

func (c Chain) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(c) == 0 {
		return nil, ErrUnavailable
	}
	var errs []error
	for _, e := range c {
		res, err := e.Extract(ctx, data)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrEmptyOrUnreadable) && !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		errs = append(errs, err)
	}
	// Report unreadable over unavailable: at least one backend read the file.
	for _, err := range errs {
		if errors.Is(err, ErrEmptyOrUnreadable) {
			return nil, err
		}
	}
	return nil, errs[len(errs)-1]
}
