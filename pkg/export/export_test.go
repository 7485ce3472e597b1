package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(columns, rows int) Dataset {
	data := Dataset{}
	for i := 0; i < columns; i++ {
		data.Headers = append(data.Headers, fmt.Sprintf("col%d", i))
	}
	for r := 0; r < rows; r++ {
		values := make([]string, columns)
		for i := range values {
			values[i] = fmt.Sprintf("%d", r*i)
		}
		data.Append(values...)
	}
	return data
}

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{Headers: []string{"Faculty", "Patents"}}
	data.Append("Dr. Rao, A.", "4")

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	text := strings.TrimPrefix(string(out), "\ufeff")
	assert.Equal(t, "Faculty,Patents\n\"Dr. Rao, A.\",4\n", text)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.ErrorIs(t, err, ErrNoColumns)
}

func TestDatasetAppendNormalizesWidth(t *testing.T) {
	data := Dataset{Headers: []string{"A", "B"}}
	data.Append("1")
	data.Append("1", "2", "3")

	assert.Equal(t, [][]string{{"1", ""}, {"1", "2"}}, data.Rows)
	assert.Equal(t, "", data.Cell(5, 0))
}

func TestPDFExporterRendersWideMultiPageTable(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(19, 120), "Faculty achievements")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "empty")
	require.Error(t, err)
}
