package samples

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gobenford/internal"
	"gobenford/internal/errors"
	"gobenford/ports"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// Supported input formats
const (
	FormatText = "txt"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// StdinPath reads newline-delimited samples from standard input
const StdinPath = "-"

// Reader handles reading samples from text, CSV, Excel and JSON files
type Reader struct {
	logger *internal.Logger
	stdin  io.Reader
}

// NewReader creates a new sample reader
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger.With("SampleLoader"), stdin: os.Stdin}
}

var _ ports.SampleSource = (*Reader)(nil)

// DetectFormat maps a file extension to an input format. Unknown extensions are text.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".json":
		return FormatJSON
	}
	return FormatText
}

// Load reads the samples at path. Header rows of tabular input are returned as
// blank entries so that positions in the result line up with file rows.
func (r *Reader) Load(ctx context.Context, path string, opts ports.LoadOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = DetectFormat(path)
	}
	r.logger.Debug("Reading %s samples from %s", format, path)
	start := time.Now()

	var (
		values []string
		err    error
	)
	if path == StdinPath {
		values, err = r.readStdin(format, opts)
	} else {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil, errors.NotFound(fmt.Sprintf("sample file %s", path))
		}
		switch format {
		case FormatText:
			values, err = r.readText(path)
		case FormatCSV:
			values, err = r.readCSV(path, opts)
		case FormatXLSX:
			values, err = r.readExcel(path, opts)
		case FormatJSON:
			values, err = r.readJSON(path, opts)
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unsupported sample format: %s", format))
		}
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Read %d entries from %s in %.2fms", len(values), path, float64(time.Since(start).Nanoseconds())/1e6)
	return values, nil
}

func (r *Reader) readStdin(format string, opts ports.LoadOptions) ([]string, error) {
	data, err := io.ReadAll(r.stdin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read standard input")
	}
	switch format {
	case FormatText:
		return splitLines(data), nil
	case FormatCSV:
		return parseCSV(bytes.NewReader(data), opts)
	case FormatJSON:
		return parseJSON(data, opts)
	}
	return nil, errors.InvalidInput(fmt.Sprintf("format %s cannot be read from standard input", format))
}

// readText reads a newline-delimited file; trailing whitespace of the file is dropped
func (r *Reader) readText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return splitLines(data), nil
}

func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, " \t\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

func (r *Reader) readCSV(path string, opts ports.LoadOptions) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	return parseCSV(file, opts)
}

func parseCSV(src io.Reader, opts ports.LoadOptions) ([]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}
	return selectColumn(rows, opts)
}

// readExcel reads one column of a worksheet using raw (unformatted) cell values
func (r *Reader) readExcel(path string, opts ports.LoadOptions) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("workbook %s has no sheets", path))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	r.logger.Debug("Sheet %s has %d rows", sheet, len(rows))

	return selectColumn(rows, opts)
}

func (r *Reader) readJSON(path string, opts ports.LoadOptions) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return parseJSON(data, opts)
}

// parseJSON extracts an array of numbers or strings. Numbers keep their raw JSON text.
func parseJSON(data []byte, opts ports.LoadOptions) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.InvalidInput("input is not valid JSON")
	}

	path := opts.JSONPath
	if path == "" {
		path = "@this"
	}
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return nil, errors.InvalidInput(fmt.Sprintf("JSON path '%s' not found", path))
	}
	if !result.IsArray() {
		return nil, errors.InvalidInput(fmt.Sprintf("JSON path '%s' is not an array", path))
	}

	elements := result.Array()
	values := make([]string, 0, len(elements))
	for i, value := range elements {
		switch value.Type {
		case gjson.Number:
			values = append(values, value.Raw)
		case gjson.String:
			values = append(values, value.Str)
		case gjson.Null:
			values = append(values, "")
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("JSON element %d is %s, want number or string", i, value.Type))
		}
	}
	return values, nil
}

// selectColumn picks one column out of tabular rows. Missing cells are blank.
func selectColumn(rows [][]string, opts ports.LoadOptions) ([]string, error) {
	if len(rows) == 0 {
		return []string{}, nil
	}

	idx, err := columnIndex(rows[0], opts)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(rows))
	for i, row := range rows {
		if i == 0 && !opts.NoHeader {
			continue
		}
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

func columnIndex(header []string, opts ports.LoadOptions) (int, error) {
	column := strings.TrimSpace(opts.Column)
	if column == "" {
		return 0, nil
	}
	if idx, err := strconv.Atoi(column); err == nil {
		if idx < 0 {
			return 0, errors.InvalidInput(fmt.Sprintf("column index %d is negative", idx))
		}
		return idx, nil
	}
	if opts.NoHeader {
		return 0, errors.InvalidInput(fmt.Sprintf("column %q needs a header row", column))
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return i, nil
		}
	}
	return 0, errors.InvalidInput(fmt.Sprintf("column %q not found in header", column))
}
