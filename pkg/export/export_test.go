package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Attendance 2024-07-01",
		Headers: []string{"Name", "Department", "Status"},
		Rows: [][]string{
			{"Jane Doe", "ICU", "Present"},
			{"John, Jr.", "Emergency", "Leave"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Name,Department,Status\nJane Doe,ICU,Present\n\"John, Jr.\",Emergency,Leave\n", string(out))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only name"})
	for format, renderer := range Renderers() {
		_, err := renderer.Render(data)
		assert.Error(t, err, format)
	}
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(defaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Department", "Status"}, rows[0])
	assert.Equal(t, "John, Jr.", rows[2][0])
}
