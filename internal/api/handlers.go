package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/ffgraph/internal/cache"
	"github.com/mattjoyce/ffgraph/internal/events"
	"github.com/mattjoyce/ffgraph/internal/pipeline"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	loaded := 0
	if s.catalog != nil {
		loaded = len(s.catalog.Names())
	}
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:          "ok",
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		PipelinesLoaded: loaded,
		CacheEnabled:    s.cache != nil,
	})
}

// handleOpenAPI handles GET /openapi.json.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	var names []string
	if s.catalog != nil {
		names = s.catalog.Names()
	}
	respondJSON(w, http.StatusOK, buildOpenAPIDoc(names))
}

// handleListPipelines handles GET /pipelines.
func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	resp := PipelineListResponse{Pipelines: []PipelineSummary{}}
	if s.catalog != nil {
		for _, name := range s.catalog.Names() {
			p, ok := s.catalog.Get(name)
			if !ok {
				continue
			}
			resp.Pipelines = append(resp.Pipelines, PipelineSummary{
				Name:        p.Name,
				Description: p.Description,
				Fingerprint: p.Fingerprint,
				Nodes:       len(p.NodeIDs),
			})
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetPipeline handles GET /pipelines/{name}.
func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.catalog == nil {
		s.writeError(w, http.StatusNotFound, "pipeline not found")
		return
	}
	p, ok := s.catalog.Get(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "pipeline not found")
		return
	}
	respondJSON(w, http.StatusOK, pipelineResponse(p))
}

// handleCompile handles POST /compile. The body is a pipeline file in YAML
// (or JSON), or HCL when the content type says so.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	logger := s.logger.With("request_id", reqID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	file, err := parseCompileBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pipeline document: "+err.Error())
		return
	}
	if len(file.Pipelines) == 0 {
		s.writeError(w, http.StatusBadRequest, "no pipelines in request")
		return
	}

	set, err := s.compiler.Compile(r.Context(), file.Pipelines)
	if err != nil {
		logger.Warn("compile failed", "error", err)
		s.events.Publish(events.CompileFailed, events.Failed{Error: err.Error(), RequestID: reqID})
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := CompileResponse{Pipelines: make([]PipelineResponse, 0, len(set.Pipelines))}
	for _, name := range set.Names() {
		p, _ := set.Get(name)
		item := pipelineResponse(p)
		if s.cache != nil {
			s.recordCompile(r, &item)
		}
		kind := events.CompileSucceeded
		if item.Cached {
			kind = events.CacheHit
		}
		s.events.Publish(kind, events.Compiled{
			Pipeline:    item.Name,
			Fingerprint: item.Fingerprint,
			Hits:        item.Hits,
			RequestID:   reqID,
		})
		resp.Pipelines = append(resp.Pipelines, item)
	}
	logger.Info("compiled pipelines", "count", len(resp.Pipelines))
	respondJSON(w, http.StatusOK, resp)
}

// recordCompile looks the fingerprint up in the cache and stores it when
// absent. Cache failures are logged and do not fail the request.
func (s *Server) recordCompile(r *http.Request, item *PipelineResponse) {
	ctx := r.Context()
	entry, err := s.cache.Get(ctx, item.Fingerprint)
	switch {
	case err == nil:
		item.Cached = true
		item.Hits = entry.Hits
		return
	case !errors.Is(err, cache.ErrNotFound):
		s.logger.Error("cache lookup failed", "pipeline", item.Name, "error", err)
		return
	}
	if _, err := s.cache.Put(ctx, item.Fingerprint, item.Name, item.Args); err != nil {
		s.logger.Error("cache store failed", "pipeline", item.Name, "error", err)
	}
}

// handleRecent handles GET /cache?limit=N.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, http.StatusNotFound, "compile cache disabled")
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	entries, err := s.cache.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list cache entries", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list cache entries")
		return
	}

	resp := CacheResponse{Entries: make([]CacheEntryResponse, 0, len(entries))}
	for _, e := range entries {
		item := CacheEntryResponse{
			ID:          e.ID,
			Fingerprint: e.Fingerprint,
			Name:        e.Name,
			Args:        e.Args,
			CreatedAt:   e.CreatedAt,
			Hits:        e.Hits,
		}
		if !e.LastHitAt.IsZero() {
			t := e.LastHitAt
			item.LastHitAt = &t
		}
		resp.Entries = append(resp.Entries, item)
	}
	respondJSON(w, http.StatusOK, resp)
}

func parseCompileBody(contentType string, body []byte) (*pipeline.FileSpec, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.Contains(mediaType, "hcl") {
		return pipeline.ParseHCL(body, "request.hcl")
	}
	return pipeline.ParseYAML(body)
}

func pipelineResponse(p *pipeline.Pipeline) PipelineResponse {
	resp := PipelineResponse{
		Name:            p.Name,
		Description:     p.Description,
		Fingerprint:     p.Fingerprint,
		OverwriteOutput: p.OverwriteOutput,
		FilterComplex:   p.FilterComplex,
		Args:            p.Args,
		Nodes:           make([]NodeResponse, 0, len(p.NodeIDs)),
	}
	for _, id := range p.NodeIDs {
		n, ok := p.Nodes[id]
		if !ok {
			continue
		}
		resp.Nodes = append(resp.Nodes, NodeResponse{
			ID:    id,
			Kind:  n.Kind().String(),
			Name:  n.Name(),
			Hash:  n.ShortHash(),
			Label: n.ShortRepr(),
		})
	}
	return resp
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
