package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const checksumFile = ".checksums"

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// TrackedFiles lists, relative to configDir and sorted, config.yaml and
// every pipeline file that exists.
func TrackedFiles(configDir string) ([]string, error) {
	var files []string
	if fileExists(filepath.Join(configDir, "config.yaml")) {
		files = append(files, "config.yaml")
	}
	entries, err := os.ReadDir(filepath.Join(configDir, "pipelines"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read pipelines/: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".hcl":
			files = append(files, filepath.ToSlash(filepath.Join("pipelines", entry.Name())))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Lock hashes every tracked file and writes the .checksums manifest.
func Lock(configDir string) (*ChecksumManifest, error) {
	files, err := TrackedFiles(configDir)
	if err != nil {
		return nil, err
	}
	manifest := &ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      make(map[string]string, len(files)),
	}
	for _, rel := range files {
		hash, err := ComputeBlake3Hash(filepath.Join(configDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		manifest.Hashes[rel] = hash
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksums: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, checksumFile), data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}
	return manifest, nil
}

// LoadChecksums reads the .checksums file from a config directory.
func LoadChecksums(configDir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(configDir, checksumFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checksums file not found (run 'ffgraph config lock')")
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	return &manifest, nil
}

// Verify compares tracked files against the manifest and returns one
// message per difference. A missing manifest is reported as an error.
func Verify(configDir string) ([]string, error) {
	manifest, err := LoadChecksums(configDir)
	if err != nil {
		return nil, err
	}
	files, err := TrackedFiles(configDir)
	if err != nil {
		return nil, err
	}

	var problems []string
	seen := make(map[string]bool, len(files))
	for _, rel := range files {
		seen[rel] = true
		expected, ok := manifest.Hashes[rel]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is not in %s", rel, checksumFile))
			continue
		}
		actual, err := ComputeBlake3Hash(filepath.Join(configDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		if actual != expected {
			problems = append(problems, fmt.Sprintf("%s changed since last lock", rel))
		}
	}
	for rel := range manifest.Hashes {
		if !seen[rel] {
			problems = append(problems, fmt.Sprintf("%s is in %s but missing from disk", rel, checksumFile))
		}
	}
	sort.Strings(problems)
	return problems, nil
}
