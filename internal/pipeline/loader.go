package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mattjoyce/ffgraph/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Extensions lists the pipeline file extensions LoadAndCompileDir reads.
var Extensions = []string{".yaml", ".yml", ".hcl"}

// LoadAndCompileDir discovers pipeline files in <configDir>/pipelines,
// parses all definitions, and compiles them. A missing directory yields an
// empty set.
func LoadAndCompileDir(configDir string, ops *graph.OperatorTable) (*Set, error) {
	files, err := DiscoverFiles(configDir)
	if err != nil {
		return nil, err
	}

	var specs []PipelineSpec
	parser := hclparse.NewParser()
	for _, filePath := range files {
		var fileSpec *FileSpec
		if filepath.Ext(filePath) == ".hcl" {
			fileSpec, err = loadHCLFile(filePath, parser)
		} else {
			fileSpec, err = LoadFile(filePath)
		}
		if err != nil {
			return nil, err
		}
		specs = append(specs, fileSpec.Pipelines...)
	}

	return CompileSpecs(specs, ops)
}

// DiscoverFiles lists pipeline files under <configDir>/pipelines, sorted.
func DiscoverFiles(configDir string) ([]string, error) {
	pipelinesDir := filepath.Join(configDir, "pipelines")
	entries, err := os.ReadDir(pipelinesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pipelines directory %q: %w", pipelinesDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isPipelineFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(pipelinesDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isPipelineFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile parses one pipeline file, picking the format by extension.
func LoadFile(path string) (*FileSpec, error) {
	if filepath.Ext(path) == ".hcl" {
		return LoadHCLFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file %q: %w", path, err)
	}
	fileSpec, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse pipeline file %q: %w", path, err)
	}
	return fileSpec, nil
}

// ParseYAML parses pipeline definitions from YAML bytes.
func ParseYAML(data []byte) (*FileSpec, error) {
	var fileSpec FileSpec
	if err := yaml.Unmarshal(data, &fileSpec); err != nil {
		return nil, err
	}
	for i, p := range fileSpec.Pipelines {
		fileSpec.Pipelines[i].Name = strings.TrimSpace(p.Name)
	}
	return &fileSpec, nil
}
