package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
)

// ErrEmptyPayload the body carried no readings at all.
var ErrEmptyPayload = errors.New("empty readings payload")

// readingPayload wire form of one reading; every field is required.
type readingPayload struct {
	PH          *float64 `json:"ph"`
	Temperature *float64 `json:"temperature"`
	TDS         *float64 `json:"tds"`
}

// ParseReadingsPayload decodes a single reading object or an array of them.
func ParseReadingsPayload(body []byte) ([]domain.Readings, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}

	var raw []readingPayload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid readings array: %w", err)
		}
	} else {
		var one readingPayload
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("invalid reading: %w", err)
		}
		raw = []readingPayload{one}
	}

	out := make([]domain.Readings, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.PH == nil:
			return nil, fmt.Errorf("reading %d: ph is required", i)
		case r.Temperature == nil:
			return nil, fmt.Errorf("reading %d: temperature is required", i)
		case r.TDS == nil:
			return nil, fmt.Errorf("reading %d: tds is required", i)
		}
		out = append(out, domain.Readings{PH: *r.PH, Temperature: *r.Temperature, TDS: *r.TDS})
	}
	return out, nil
}
