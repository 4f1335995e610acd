package sources

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CSVSource presents a set of CSV files matching a glob pattern as one
// finite, indexable collection of Examples. It uses lazy loading: only file
// paths, the column layout and per-file row counts are kept in memory; the
// actual data is read when an element is requested. Each At call opens its
// own reader, which is what makes the source safe for concurrent access by
// parallel pipeline stages.
type CSVSource struct {
	// Pattern used to find CSV files (e.g., "assets/train/*.csv").
	Pattern string

	// Feature and label column names, resolved against the header of the
	// first file. Every file must carry at least these columns.
	featureCols []string
	labelCols   []string

	csvPaths []string
	colIndex map[string]int

	// Cumulative row counts for fast global index -> (file, row) mapping.
	cumCounts []int
	total     int
}

// NewCSVSource creates a CSV source over the files matching pattern,
// producing Examples with the given feature and label columns. The files
// are scanned once to count rows and fix the column layout; no row data is
// retained.
func NewCSVSource(pattern string, featureCols, labelCols []string) (*CSVSource, error) {
	if len(featureCols) == 0 {
		return nil, fmt.Errorf("at least one feature column is required")
	}
	csvPaths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(csvPaths) == 0 {
		return nil, fmt.Errorf("no CSV files found matching pattern: %s", pattern)
	}
	// Glob order is filesystem-dependent; sort so element order is stable
	// across machines.
	sort.Strings(csvPaths)

	s := &CSVSource{
		Pattern:     pattern,
		featureCols: featureCols,
		labelCols:   labelCols,
		csvPaths:    csvPaths,
	}
	if err := s.initializeColumns(); err != nil {
		return nil, err
	}
	if err := s.buildIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// initializeColumns reads the first CSV header to determine column indices.
func (s *CSVSource) initializeColumns() error {
	file, err := os.Open(s.csvPaths[0])
	if err != nil {
		return fmt.Errorf("failed to open first CSV %s: %w", s.csvPaths[0], err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	s.colIndex = make(map[string]int)
	for i, col := range header {
		s.colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}

	for _, col := range append(append([]string{}, s.featureCols...), s.labelCols...) {
		if _, ok := s.colIndex[strings.ToLower(col)]; !ok {
			return fmt.Errorf("required column %q not found in CSV", col)
		}
	}
	return nil
}

// buildIndex counts rows in all files and builds cumulative counts.
func (s *CSVSource) buildIndex() error {
	s.cumCounts = make([]int, len(s.csvPaths)+1)
	for i, path := range s.csvPaths {
		count, err := countCSVRows(path)
		if err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", path, err)
		}
		s.cumCounts[i+1] = s.cumCounts[i] + count
	}
	s.total = s.cumCounts[len(s.csvPaths)]
	return nil
}

// Len returns the total number of examples across all CSV files.
func (s *CSVSource) Len() int { return s.total }

// At reads the example at the given global index.
func (s *CSVSource) At(i int) (any, error) {
	if i < 0 || i >= s.total {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, s.total)
	}
	fileIdx, rowIdx := s.mapGlobalIndex(i)
	return s.readExample(fileIdx, rowIdx)
}

// mapGlobalIndex maps a global index to (file index, row index within file).
func (s *CSVSource) mapGlobalIndex(globalIdx int) (fileIdx, rowIdx int) {
	fileIdx = sort.Search(len(s.csvPaths), func(i int) bool {
		return globalIdx < s.cumCounts[i+1]
	})
	return fileIdx, globalIdx - s.cumCounts[fileIdx]
}

// readExample reads a specific row from a file and parses it into an
// Example.
func (s *CSVSource) readExample(fileIdx, rowIdx int) (*Example, error) {
	file, err := os.Open(s.csvPaths[fileIdx])
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header, then skip to the desired row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for range rowIdx {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip to row %d: %w", rowIdx, err)
		}
	}
	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d: %w", rowIdx, err)
	}

	ex := &Example{
		Inputs: make([]float32, len(s.featureCols)),
		Labels: make([]float32, len(s.labelCols)),
	}
	for i, col := range s.featureCols {
		v, err := parseFloat32(record[s.colIndex[strings.ToLower(col)]])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", col, err)
		}
		ex.Inputs[i] = v
	}
	for i, col := range s.labelCols {
		v, err := parseFloat32(record[s.colIndex[strings.ToLower(col)]])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", col, err)
		}
		ex.Labels[i] = v
	}
	return ex, nil
}
