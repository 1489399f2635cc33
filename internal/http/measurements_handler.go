package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	"github.com/JerraForge/hydroponic-backend/internal/models"
	"github.com/JerraForge/hydroponic-backend/internal/service"

	"go.uber.org/zap"
)

// MeasurementsHandler /api/v1/systems/{id}/measurements[/export]
type MeasurementsHandler struct {
	measurements service.MeasurementService
	ingestor     service.MeasurementIngestor
	logger       *zap.Logger
}

func NewMeasurementsHandler(measurements service.MeasurementService, ingestor service.MeasurementIngestor, logger *zap.Logger) *MeasurementsHandler {
	return &MeasurementsHandler{
		measurements: measurements,
		ingestor:     ingestor,
		logger:       logger,
	}
}

// QueryMeasurements GET /api/v1/systems/{id}/measurements?start_date=&end_date=&show_ph=&show_temperature=&show_tds=&filter_type=&min_value=&max_value=&page=
func (h *MeasurementsHandler) QueryMeasurements(w http.ResponseWriter, r *http.Request, systemID string) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	resp, err := h.measurements.QueryMeasurements(r.Context(), service.QueryMeasurementsRequest{
		Identity: identity,
		SystemID: systemID,
		Filter:   models.ParseFilterSpec(r.URL.Query()),
	})
	if err != nil {
		writeServiceError(w, h.logger, "QueryMeasurements", err)
		return
	}

	page := resp.Page
	items := make([]map[string]any, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, m.ToJSON())
	}
	columns := make([]string, 0, len(domain.AllKinds))
	for _, k := range resp.Filter.ShownKinds() {
		columns = append(columns, string(k))
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"system":       resp.System.ToJSON(),
		"items":        items,
		"columns":      columns,
		"page":         page.Number,
		"page_size":    page.PageSize,
		"total":        page.Total,
		"total_pages":  page.TotalPages,
		"has_previous": page.HasPrevious,
		"has_next":     page.HasNext,
		"filters":      resp.Filter.Echo(),
	}))
}

// IngestMeasurements POST /api/v1/systems/{id}/measurements, body is one reading or an array.
func (h *MeasurementsHandler) IngestMeasurements(w http.ResponseWriter, r *http.Request, systemID string) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	body, err := readBody(r, maxBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read body"))
		return
	}
	readings, err := models.ParseReadingsPayload(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	resp, err := h.ingestor.Ingest(r.Context(), service.IngestRequest{
		Identity: identity,
		SystemID: systemID,
		Readings: readings,
		Source:   metrics.SourceHTTP,
	})
	if err != nil {
		writeServiceError(w, h.logger, "IngestMeasurements", err)
		return
	}

	out := make([]map[string]any, 0, len(resp.Measurements))
	for _, m := range resp.Measurements {
		out = append(out, map[string]any{
			"id":          m.ID,
			"timestamp":   m.Timestamp.UTC().Format(domain.MeasurementTimeLayout),
			"ph":          m.PH,
			"temperature": m.Temperature,
			"tds":         m.TDS,
		})
	}
	writeJSON(w, http.StatusCreated, Ok(map[string]any{
		"message":      fmt.Sprintf("%d measurement(s) recorded", len(out)),
		"measurements": out,
	}))
}

// ExportMeasurements GET /api/v1/systems/{id}/measurements/export, same filters as the list.
func (h *MeasurementsHandler) ExportMeasurements(w http.ResponseWriter, r *http.Request, systemID string) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	resp, err := h.measurements.ExportMeasurements(r.Context(), service.QueryMeasurementsRequest{
		Identity: identity,
		SystemID: systemID,
		Filter:   models.ParseFilterSpec(r.URL.Query()),
	})
	if err != nil {
		writeServiceError(w, h.logger, "ExportMeasurements", err)
		return
	}

	data, err := GenerateMeasurementExport(resp.Columns, resp.Rows)
	if err != nil {
		h.logger.Error("GenerateMeasurementExport failed", zap.String("system_id", systemID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("measurements-%s-%s.xlsx", resp.System.SystemID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if resp.Truncated {
		w.Header().Set("X-Export-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
