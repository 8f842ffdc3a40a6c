package api

import "time"

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	PipelinesLoaded int    `json:"pipelines_loaded"`
	CacheEnabled    bool   `json:"cache_enabled"`
}

// PipelineSummary is one entry of GET /pipelines.
type PipelineSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Nodes       int    `json:"nodes"`
}

// PipelineListResponse is returned by GET /pipelines.
type PipelineListResponse struct {
	Pipelines []PipelineSummary `json:"pipelines"`
}

// NodeResponse describes one graph node of a compiled pipeline.
type NodeResponse struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Hash  string `json:"hash"`
	Label string `json:"label"`
}

// PipelineResponse is returned by GET /pipelines/{name} and inside
// CompileResponse.
type PipelineResponse struct {
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Fingerprint     string         `json:"fingerprint"`
	OverwriteOutput bool           `json:"overwrite_output,omitempty"`
	FilterComplex   string         `json:"filter_complex,omitempty"`
	Args            []string       `json:"args"`
	Nodes           []NodeResponse `json:"nodes"`
	Cached          bool           `json:"cached"`
	Hits            int            `json:"hits,omitempty"`
}

// CompileResponse is returned by POST /compile.
type CompileResponse struct {
	Pipelines []PipelineResponse `json:"pipelines"`
}

// CacheEntryResponse is one row of GET /cache.
type CacheEntryResponse struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	Name        string     `json:"name"`
	Args        []string   `json:"args"`
	CreatedAt   time.Time  `json:"created_at"`
	LastHitAt   *time.Time `json:"last_hit_at,omitempty"`
	Hits        int        `json:"hits"`
}

// CacheResponse is returned by GET /cache.
type CacheResponse struct {
	Entries []CacheEntryResponse `json:"entries"`
}
