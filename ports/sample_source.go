package ports

import "context"

// LoadOptions selects where samples live inside a structured file
type LoadOptions struct {
	// Format overrides detection by file extension: txt, csv, xlsx or json
	Format string
	// Column is a header name or a 0-based index for csv and xlsx input
	Column string
	// Sheet names the xlsx worksheet; empty selects the first sheet
	Sheet string
	// JSONPath is a gjson path to an array of samples; empty selects the document root
	JSONPath string
	// NoHeader treats the first csv/xlsx row as data
	NoHeader bool
}

// SampleSource loads textual samples for analysis. Blank entries are allowed
// and are skipped by the counter.
type SampleSource interface {
	Load(ctx context.Context, path string, opts LoadOptions) ([]string, error)
}
