package models

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
)

// DateLayout calendar-date format of start_date/end_date.
// Single-digit months and days are accepted ("2024-3-7").
const DateLayout = "2006-1-2"

// FilterSpec parsed filter/paging parameters of a measurement read request.
// Malformed input never produces an error: the affected field is left at its
// "absent" value (nil pointer, empty kind, page 1).
type FilterSpec struct {
	// StartDate/EndDate are inclusive calendar dates (midnight UTC, date part only).
	StartDate *time.Time
	EndDate   *time.Time

	// Display hints for the consumer. They never filter rows.
	ShowPH          bool
	ShowTemperature bool
	ShowTDS         bool

	Value ValueFilter

	Page int
}

// ValueFilter keeps rows whose reading for Kind lies in [Min, Max].
// Kind == "" disables it; nil bounds are not applied.
type ValueFilter struct {
	Kind domain.MeasurementKind
	Min  *float64
	Max  *float64
}

// Active reports whether the filter restricts rows at all.
func (v ValueFilter) Active() bool {
	return v.Kind != "" && (v.Min != nil || v.Max != nil)
}

// ParseFilterSpec reads start_date, end_date, show_ph, show_temperature, show_tds,
// filter_type, min_value, max_value and page from q.
func ParseFilterSpec(q url.Values) FilterSpec {
	spec := FilterSpec{
		StartDate: parseDate(q.Get("start_date")),
		EndDate:   parseDate(q.Get("end_date")),

		ShowPH:          parseFlag(q.Get("show_ph")),
		ShowTemperature: parseFlag(q.Get("show_temperature")),
		ShowTDS:         parseFlag(q.Get("show_tds")),

		Value: ValueFilter{
			Kind: domain.ParseMeasurementKind(q.Get("filter_type")),
			Min:  parseBound(q.Get("min_value")),
			Max:  parseBound(q.Get("max_value")),
		},

		Page: parsePage(q.Get("page")),
	}

	// nothing selected means everything is shown
	if !spec.ShowPH && !spec.ShowTemperature && !spec.ShowTDS {
		spec.ShowPH, spec.ShowTemperature, spec.ShowTDS = true, true, true
	}
	return spec
}

// Shows reports whether kind's column should be rendered.
func (f FilterSpec) Shows(kind domain.MeasurementKind) bool {
	switch kind {
	case domain.KindPH:
		return f.ShowPH
	case domain.KindTemperature:
		return f.ShowTemperature
	case domain.KindTDS:
		return f.ShowTDS
	default:
		return false
	}
}

// ShownKinds the displayed kinds in display order.
func (f FilterSpec) ShownKinds() []domain.MeasurementKind {
	out := make([]domain.MeasurementKind, 0, len(domain.AllKinds))
	for _, k := range domain.AllKinds {
		if f.Shows(k) {
			out = append(out, k)
		}
	}
	return out
}

// Echo filter state as the presentation layer re-renders it; absent values are "".
func (f FilterSpec) Echo() map[string]any {
	return map[string]any{
		"start_date":       formatDate(f.StartDate),
		"end_date":         formatDate(f.EndDate),
		"show_ph":          f.ShowPH,
		"show_temperature": f.ShowTemperature,
		"show_tds":         f.ShowTDS,
		"filter_type":      string(f.Value.Kind),
		"min_value":        formatBound(f.Value.Min),
		"max_value":        formatBound(f.Value.Max),
	}
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}

func parseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 1
	}
	return n
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
