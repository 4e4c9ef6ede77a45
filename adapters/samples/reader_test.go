package samples

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gobenford/internal"
	"gobenford/internal/errors"
	"gobenford/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestReader() *Reader {
	return NewReader(internal.NewLogger(internal.LogLevelError))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("a/b.CSV"))
	assert.Equal(t, FormatXLSX, DetectFormat("book.xlsx"))
	assert.Equal(t, FormatJSON, DetectFormat("x.json"))
	assert.Equal(t, FormatText, DetectFormat("counts.txt"))
	assert.Equal(t, FormatText, DetectFormat("noext"))
}

func TestLoad_Text(t *testing.T) {
	path := writeFile(t, "counts.txt", "123\n\n456\r\n789\n\n\n")

	values, err := newTestReader().Load(context.Background(), path, ports.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "", "456", "789"}, values)
}

func TestLoad_EmptyText(t *testing.T) {
	path := writeFile(t, "empty.txt", "\n  \n")

	values, err := newTestReader().Load(context.Background(), path, ports.LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newTestReader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), ports.LoadOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestReader().Load(ctx, "whatever.txt", ports.LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "ledger.csv", "id,amount,note\n1,1200,a\n2,345,b\n3\n4,78,\"quoted, note\"\n")
	reader := newTestReader()

	tests := []struct {
		name string
		opts ports.LoadOptions
		want []string
	}{
		{"by header name", ports.LoadOptions{Column: "Amount"}, []string{"", "1200", "345", "", "78"}},
		{"by index", ports.LoadOptions{Column: "0"}, []string{"", "1", "2", "3", "4"}},
		{"default first column", ports.LoadOptions{}, []string{"", "1", "2", "3", "4"}},
		{"no header", ports.LoadOptions{Column: "1", NoHeader: true}, []string{"amount", "1200", "345", "", "78"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := reader.Load(context.Background(), path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestLoad_CSVColumnErrors(t *testing.T) {
	path := writeFile(t, "ledger.csv", "id,amount\n1,2\n")
	reader := newTestReader()

	_, err := reader.Load(context.Background(), path, ports.LoadOptions{Column: "price"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = reader.Load(context.Background(), path, ports.LoadOptions{Column: "amount", NoHeader: true})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoad_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"invoice", "amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"INV-1", 12345}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"INV-2", 987654321012}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"INV-3", "42"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", 7))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader := newTestReader()

	values, err := reader.Load(context.Background(), path, ports.LoadOptions{Column: "amount"})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "12345", "987654321012", "42"}, values)

	values, err = reader.Load(context.Background(), path, ports.LoadOptions{Sheet: "Other", NoHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, values)

	_, err = reader.Load(context.Background(), path, ports.LoadOptions{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "payments.json", `{"payments": {"amounts": [120, "345", null, 98765432109876543210]}}`)
	reader := newTestReader()

	values, err := reader.Load(context.Background(), path, ports.LoadOptions{JSONPath: "payments.amounts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"120", "345", "", "98765432109876543210"}, values)

	_, err = reader.Load(context.Background(), path, ports.LoadOptions{JSONPath: "payments.missing"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = reader.Load(context.Background(), path, ports.LoadOptions{JSONPath: "payments"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an array")
}

func TestLoad_JSONRootArrayAndBadElements(t *testing.T) {
	reader := newTestReader()

	path := writeFile(t, "root.json", `[1, 22, 333]`)
	values, err := reader.Load(context.Background(), path, ports.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "22", "333"}, values)

	path = writeFile(t, "bad.json", `[1, {"x": 2}]`)
	_, err = reader.Load(context.Background(), path, ports.LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")

	path = writeFile(t, "broken.json", `[1, 2`)
	_, err = reader.Load(context.Background(), path, ports.LoadOptions{})
	assert.Error(t, err)
}

func TestLoad_Stdin(t *testing.T) {
	reader := newTestReader()
	reader.stdin = strings.NewReader("10\n20\n30\n")

	values, err := reader.Load(context.Background(), StdinPath, ports.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30"}, values)

	reader.stdin = strings.NewReader("")
	_, err = reader.Load(context.Background(), StdinPath, ports.LoadOptions{Format: FormatXLSX})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
