package api

// buildOpenAPIDoc returns an OpenAPI 3.1 document for the compile service.
// names enumerates the loaded pipelines for GET /pipelines/{name}.
func buildOpenAPIDoc(names []string) map[string]any {
	nameSchema := map[string]any{"type": "string"}
	if len(names) > 0 {
		nameSchema["enum"] = names
	}

	errorResponse := func(desc string) map[string]any {
		return map[string]any{
			"description": desc,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/Error"},
				},
			},
		}
	}
	bearer := []map[string]any{{"BearerAuth": []string{}}}

	paths := map[string]any{
		"/healthz": map[string]any{
			"get": map[string]any{
				"operationId": "healthz",
				"summary":     "Service health",
				"responses": map[string]any{
					"200": map[string]any{"description": "Service is up"},
				},
			},
		},
		"/pipelines": map[string]any{
			"get": map[string]any{
				"operationId": "listPipelines",
				"summary":     "List loaded pipelines",
				"responses": map[string]any{
					"200": map[string]any{"description": "Pipeline summaries"},
				},
			},
		},
		"/pipelines/{name}": map[string]any{
			"get": map[string]any{
				"operationId": "getPipeline",
				"summary":     "Compiled command line of a loaded pipeline",
				"parameters": []map[string]any{{
					"name":     "name",
					"in":       "path",
					"required": true,
					"schema":   nameSchema,
				}},
				"responses": map[string]any{
					"200": map[string]any{"description": "Compiled pipeline"},
					"404": errorResponse("Unknown pipeline"),
				},
			},
		},
		"/compile": map[string]any{
			"post": map[string]any{
				"operationId": "compile",
				"summary":     "Compile submitted pipeline definitions",
				"security":    bearer,
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						"application/yaml": map[string]any{"schema": map[string]any{"type": "string"}},
						"application/json": map[string]any{"schema": map[string]any{"type": "object"}},
						"application/hcl":  map[string]any{"schema": map[string]any{"type": "string"}},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{"description": "Compiled pipelines"},
					"400": errorResponse("Malformed document"),
					"401": errorResponse("Unauthorized"),
					"413": errorResponse("Body too large"),
					"422": errorResponse("Graph or operator error"),
				},
			},
		},
		"/cache": map[string]any{
			"get": map[string]any{
				"operationId": "recentCompilations",
				"summary":     "Most recently cached compilations",
				"security":    bearer,
				"parameters": []map[string]any{{
					"name":   "limit",
					"in":     "query",
					"schema": map[string]any{"type": "integer", "minimum": 1, "maximum": maxRecentLimit},
				}},
				"responses": map[string]any{
					"200": map[string]any{"description": "Cache entries"},
					"401": errorResponse("Unauthorized"),
					"404": errorResponse("Cache disabled"),
				},
			},
		},
		"/events": map[string]any{
			"get": map[string]any{
				"operationId": "streamEvents",
				"summary":     "Server-sent stream of compile events",
				"security":    bearer,
				"parameters": []map[string]any{{
					"name":   "Last-Event-ID",
					"in":     "header",
					"schema": map[string]any{"type": "integer", "minimum": 0},
				}},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "compile.succeeded, compile.failed and cache.hit events",
						"content":     map[string]any{"text/event-stream": map[string]any{}},
					},
					"401": errorResponse("Unauthorized"),
				},
			},
		},
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "ffgraph compile service",
			"version": "1.0",
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"error": map[string]any{"type": "string"}},
					"required":   []string{"error"},
				},
			},
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
	}
}
