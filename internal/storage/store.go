package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"archmap/internal/analysis"
	"archmap/internal/parser"
)

// Reserved document names written alongside the component bundles.
const (
	SummaryFile      = "analysis_summary.json"
	ArchitectureFile = "architecture_analysis.json"
	ProjectFile      = "project_analysis.json"
)

const bundleSuffix = "_analysis.json"

// Bundle holds one component's parsed sources.
type Bundle struct {
	Component     string      `json:"component"`
	FilesAnalyzed int         `json:"files_analyzed"`
	Analysis      []FileEntry `json:"analysis"`
}

// FileEntry pairs a component-relative path with its parse result.
type FileEntry struct {
	File string         `json:"file"`
	AST  *parser.Result `json:"ast"`
}

// Summary is the scan-wide component inventory.
type Summary struct {
	ProjectName        string                      `json:"project_name"`
	Components         map[string]ComponentSummary `json:"components"`
	TotalFilesAnalyzed int                         `json:"total_files_analyzed"`
}

// ComponentSummary is one component's line in the scan summary.
type ComponentSummary struct {
	FilesAnalyzed int    `json:"files_analyzed"`
	Path          string `json:"path"`
}

// Store reads and writes the analysis documents of one output
// directory. The directory itself is created on first write.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute location of a document inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// BundleName returns the file name a component's bundle is saved under.
func BundleName(component string) string {
	return component + bundleSuffix
}

// SaveBundle writes a component bundle under its derived name.
func (s *Store) SaveBundle(bundle *Bundle) error {
	return s.writeJSON(BundleName(bundle.Component), bundle)
}

// SaveSummary writes the scan summary document.
func (s *Store) SaveSummary(summary *Summary) error {
	return s.writeJSON(SummaryFile, summary)
}

// SaveArchitecture writes the generic architecture document.
func (s *Store) SaveArchitecture(doc *analysis.ArchitectureDocument) error {
	return s.writeJSON(ArchitectureFile, doc)
}

// SaveProject writes the CGRA project document.
func (s *Store) SaveProject(doc *analysis.CGRADocument) error {
	return s.writeJSON(ProjectFile, doc)
}

// BundleFiles lists the bundle paths in the store directory in name
// order. The architecture and project documents share the bundle
// suffix but are not bundles, so they are skipped.
func (s *Store) BundleFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, bundleSuffix) {
			continue
		}
		if name == ArchitectureFile || name == ProjectFile {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	return files, nil
}

// LoadBundle reads one bundle back from disk.
func (s *Store) LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle %s: %w", filepath.Base(path), err)
	}
	return &bundle, nil
}

// writeJSON marshals a document two-space indented with a trailing
// newline, creating the output directory on demand.
func (s *Store) writeJSON(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
