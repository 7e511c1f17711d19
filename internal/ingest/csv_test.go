package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := "state,municipality,neighborhood,postal_code\n" +
		"Jalisco,Guadalajara,Americana,44160\n" +
		"\"Ciudad de México\",\"Cuauhtémoc\",\"Roma Norte\",06700\n"

	rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Jalisco", rows[0]["state"])
	assert.Equal(t, "Guadalajara", rows[0]["municipality"])
	assert.Equal(t, "Ciudad de México", rows[1]["state"])
	assert.Equal(t, "Roma Norte", rows[1]["neighborhood"])
	assert.Equal(t, "06700", rows[1]["postal_code"])
}

func TestParseCSVQuoting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "escaped quotes",
			input:    "a,b\n\"say \"\"hola\"\"\",x\n",
			expected: map[string]string{"a": `say "hola"`, "b": "x"},
		},
		{
			name:     "comma inside quotes",
			input:    "a,b\n\"uno, dos\",tres\n",
			expected: map[string]string{"a": "uno, dos", "b": "tres"},
		},
		{
			name:     "newline inside quotes",
			input:    "a,b\n\"line1\nline2\",x\n",
			expected: map[string]string{"a": "line1\nline2", "b": "x"},
		},
		{
			name:     "crlf line endings",
			input:    "a,b\r\nuno,dos\r\n",
			expected: map[string]string{"a": "uno", "b": "dos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.expected, rows[0])
		})
	}
}

func TestParseCSVBestEffort(t *testing.T) {
	// Short rows leave trailing columns empty; long rows drop extras.
	input := "a,b,c\nuno\nuno,dos,tres,cuatro\n"
	rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "uno", rows[0]["a"])
	assert.Equal(t, "", rows[0]["b"])
	assert.Equal(t, "tres", rows[1]["c"])
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := parseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRowFromFieldsSepomexAliases(t *testing.T) {
	row := rowFromFields(map[string]string{
		"d_estado": "Guanajuato",
		"d_mnpio":  "León",
		"d_asenta": "Centro",
		"d_codigo": "37000",
	})

	assert.Equal(t, "Guanajuato", row.State)
	assert.Equal(t, "León", row.Municipality)
	assert.Equal(t, "Centro", row.Neighborhood)
	assert.Equal(t, "37000", row.PostalCode)
}
