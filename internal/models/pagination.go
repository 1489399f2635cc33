package models

import (
	"context"
	"fmt"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
)

// DefaultPageSize rows per page of the measurement list.
const DefaultPageSize = 10

// MeasurementSequence ordered, re-iterable, lazily evaluated measurement set.
// Count and Slice must observe the same ordering on every call.
type MeasurementSequence interface {
	Count(ctx context.Context) (int, error)
	// Slice returns at most limit rows starting at zero-based offset.
	Slice(ctx context.Context, offset, limit int) ([]*domain.Measurement, error)
}

// Page one window of a MeasurementSequence.
type Page struct {
	Items       []*domain.Measurement
	Number      int // 1-based, always within [1, TotalPages]
	PageSize    int
	Total       int
	TotalPages  int // >= 1, also for an empty sequence
	HasPrevious bool
	HasNext     bool
}

// Paginate counts seq, clamps requested into [1, totalPages] and slices that page.
// Count and Slice are separate reads; under concurrent writes Total may not match
// the sliced rows exactly.
func Paginate(ctx context.Context, seq MeasurementSequence, requested, pageSize int) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total, err := seq.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count measurements: %w", err)
	}

	totalPages := TotalPages(total, pageSize)
	number := ClampPage(requested, totalPages)

	items := []*domain.Measurement{}
	if total > 0 {
		items, err = seq.Slice(ctx, (number-1)*pageSize, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load measurement page: %w", err)
		}
		if items == nil {
			items = []*domain.Measurement{}
		}
	}

	return &Page{
		Items:       items,
		Number:      number,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasPrevious: number > 1,
		HasNext:     number < totalPages,
	}, nil
}

// TotalPages ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage moves requested into [1, totalPages].
func ClampPage(requested, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}
