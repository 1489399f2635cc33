package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/models"
)

// MeasurementQuery composed row predicates for one system's measurements.
// Rows are always ordered by timestamp DESC, id DESC.
type MeasurementQuery struct {
	SystemID string

	// Inclusive calendar-date bounds, compared in Location.
	StartDate *time.Time
	EndDate   *time.Time
	Location  *time.Location

	Value models.ValueFilter
}

// BuildMeasurementQuery composes the row filter for system.
// Display flags do not take part: they select columns, not rows.
func BuildMeasurementQuery(system *domain.System, filter models.FilterSpec, loc *time.Location) MeasurementQuery {
	if loc == nil {
		loc = time.UTC
	}
	q := MeasurementQuery{
		SystemID:  system.SystemID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Location:  loc,
	}
	if filter.Value.Active() {
		q.Value = filter.Value
	}
	return q
}

func (q MeasurementQuery) location() *time.Location {
	if q.Location == nil {
		return time.UTC
	}
	return q.Location
}

// Matches evaluates the predicates against m in memory.
func (q MeasurementQuery) Matches(m *domain.Measurement) bool {
	if m.SystemID != q.SystemID {
		return false
	}

	if q.StartDate != nil || q.EndDate != nil {
		local := m.Timestamp.In(q.location())
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		if q.StartDate != nil && day.Before(dateOnly(*q.StartDate)) {
			return false
		}
		if q.EndDate != nil && day.After(dateOnly(*q.EndDate)) {
			return false
		}
	}

	if q.Value.Kind != "" {
		v, ok := m.Value(q.Value.Kind)
		if !ok {
			return false
		}
		if q.Value.Min != nil && v < *q.Value.Min {
			return false
		}
		if q.Value.Max != nil && v > *q.Value.Max {
			return false
		}
	}
	return true
}

// whereClause SQL predicate over alias m, numbering placeholders from *argN.
func (q MeasurementQuery) whereClause(args *[]interface{}, argN *int) string {
	var where []string

	where = append(where, fmt.Sprintf("m.system_id = $%d", *argN))
	*args = append(*args, q.SystemID)
	*argN++

	if q.StartDate != nil || q.EndDate != nil {
		tzArg := *argN
		*args = append(*args, q.location().String())
		*argN++

		if q.StartDate != nil {
			where = append(where, fmt.Sprintf("(m.timestamp AT TIME ZONE $%d)::date >= $%d::date", tzArg, *argN))
			*args = append(*args, q.StartDate.Format("2006-01-02"))
			*argN++
		}
		if q.EndDate != nil {
			where = append(where, fmt.Sprintf("(m.timestamp AT TIME ZONE $%d)::date <= $%d::date", tzArg, *argN))
			*args = append(*args, q.EndDate.Format("2006-01-02"))
			*argN++
		}
	}

	if col := q.Value.Kind.Column(); col != "" {
		if q.Value.Min != nil {
			where = append(where, fmt.Sprintf("m.%s >= $%d", col, *argN))
			*args = append(*args, *q.Value.Min)
			*argN++
		}
		if q.Value.Max != nil {
			where = append(where, fmt.Sprintf("m.%s <= $%d", col, *argN))
			*args = append(*args, *q.Value.Max)
			*argN++
		}
	}

	return strings.Join(where, " AND ")
}

// sortMeasurements newest first, ties by id descending.
func sortMeasurements(items []*domain.Measurement) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID > items[j].ID
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
