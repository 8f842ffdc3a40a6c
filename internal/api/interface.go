package api

import (
	"context"

	"github.com/mattjoyce/ffgraph/internal/cache"
	"github.com/mattjoyce/ffgraph/internal/pipeline"
	"github.com/mattjoyce/ffgraph/pkg/graph"
)

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks github.com/mattjoyce/ffgraph/internal/api Compiler,PipelineCatalog,CompileCache

// Compiler turns submitted pipeline definitions into command lines.
type Compiler interface {
	Compile(ctx context.Context, specs []pipeline.PipelineSpec) (*pipeline.Set, error)
}

// PipelineCatalog exposes the pipelines loaded at startup.
type PipelineCatalog interface {
	Names() []string
	Get(name string) (*pipeline.Pipeline, bool)
}

// CompileCache records compilations by fingerprint.
type CompileCache interface {
	Get(ctx context.Context, fingerprint string) (*cache.Entry, error)
	Put(ctx context.Context, fingerprint, name string, args []string) (*cache.Entry, error)
	Recent(ctx context.Context, limit int) ([]cache.Entry, error)
}

// OperatorCompiler compiles specs against an operator table.
type OperatorCompiler struct {
	Ops *graph.OperatorTable
}

// Compile implements Compiler.
func (c OperatorCompiler) Compile(ctx context.Context, specs []pipeline.PipelineSpec) (*pipeline.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pipeline.CompileSpecs(specs, c.Ops)
}
