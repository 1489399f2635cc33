package httpapi

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const systemsPath = "/api/v1/systems"

// Router standard library http.ServeMux; path parameters are split by hand.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler accepts an http.Handler (promhttp etc.).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes /health and /metrics.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
	r.HandleHandler("/metrics", promhttp.Handler())
}

// RegisterSystemRoutes systems CRUD plus the nested measurement routes:
//
//	/api/v1/systems                                 GET list, POST create
//	/api/v1/systems/{id}                            GET detail, DELETE
//	/api/v1/systems/{id}/measurements               GET page, POST ingest
//	/api/v1/systems/{id}/measurements/export        GET xlsx
func (r *Router) RegisterSystemRoutes(s *SystemsHandler, m *MeasurementsHandler) {
	r.Handle(systemsPath, instrument(systemsPath, r.logger, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			s.ListSystems(w, req)
		case http.MethodPost:
			s.CreateSystem(w, req)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	}))

	r.Handle(systemsPath+"/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(req.URL.Path, systemsPath+"/"), "/")
		parts := strings.Split(rest, "/")
		if rest == "" || parts[0] == "" {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		id := parts[0]

		switch {
		case len(parts) == 1:
			instrument(systemsPath+"/{id}", r.logger, func(w http.ResponseWriter, req *http.Request) {
				switch req.Method {
				case http.MethodGet:
					s.GetSystem(w, req, id)
				case http.MethodDelete:
					s.DeleteSystem(w, req, id)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			})(w, req)
		case len(parts) == 2 && parts[1] == "measurements":
			instrument(systemsPath+"/{id}/measurements", r.logger, func(w http.ResponseWriter, req *http.Request) {
				switch req.Method {
				case http.MethodGet:
					m.QueryMeasurements(w, req, id)
				case http.MethodPost:
					m.IngestMeasurements(w, req, id)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			})(w, req)
		case len(parts) == 3 && parts[1] == "measurements" && parts[2] == "export":
			instrument(systemsPath+"/{id}/measurements/export", r.logger, func(w http.ResponseWriter, req *http.Request) {
				if req.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				m.ExportMeasurements(w, req, id)
			})(w, req)
		default:
			writeJSON(w, http.StatusNotFound, Fail("not found"))
		}
	})
}
