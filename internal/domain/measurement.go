package domain

import (
	"strings"
	"time"
)

// MeasurementKind one of the three sensor channels.
type MeasurementKind string

const (
	KindPH          MeasurementKind = "ph"
	KindTemperature MeasurementKind = "temperature"
	KindTDS         MeasurementKind = "tds"
)

// AllKinds in display order.
var AllKinds = []MeasurementKind{KindPH, KindTemperature, KindTDS}

// ParseMeasurementKind returns the kind for s, or "" when s names none.
func ParseMeasurementKind(s string) MeasurementKind {
	switch MeasurementKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPH:
		return KindPH
	case KindTemperature:
		return KindTemperature
	case KindTDS:
		return KindTDS
	default:
		return ""
	}
}

// Column measurements table column holding this kind's reading.
func (k MeasurementKind) Column() string {
	switch k {
	case KindPH:
		return "ph"
	case KindTemperature:
		return "temperature"
	case KindTDS:
		return "tds"
	default:
		return ""
	}
}

// Label human-readable column header.
func (k MeasurementKind) Label() string {
	switch k {
	case KindPH:
		return "pH"
	case KindTemperature:
		return "Temperature (°C)"
	case KindTDS:
		return "TDS (ppm)"
	default:
		return string(k)
	}
}

// Readings one set of sensor values.
type Readings struct {
	PH          float64 `json:"ph"`
	Temperature float64 `json:"temperature"` // °C
	TDS         float64 `json:"tds"`         // ppm
}

// Value returns the reading for kind; ok is false for an unknown kind.
func (r Readings) Value(kind MeasurementKind) (float64, bool) {
	switch kind {
	case KindPH:
		return r.PH, true
	case KindTemperature:
		return r.Temperature, true
	case KindTDS:
		return r.TDS, true
	default:
		return 0, false
	}
}

// Measurement timestamped reading (measurements table). Never mutated after insert.
type Measurement struct {
	ID        int64     `db:"id"` // BIGSERIAL
	SystemID  string    `db:"system_id"`
	Timestamp time.Time `db:"timestamp"`
	Readings
}

// MeasurementTimeLayout timestamp format of ingest responses.
const MeasurementTimeLayout = "2006-01-02 15:04"

// ToJSON response shape used by the HTTP layer.
func (m *Measurement) ToJSON() map[string]any {
	return map[string]any{
		"id":          m.ID,
		"system_id":   m.SystemID,
		"timestamp":   m.Timestamp.UTC().Format(time.RFC3339),
		"ph":          m.PH,
		"temperature": m.Temperature,
		"tds":         m.TDS,
	}
}
