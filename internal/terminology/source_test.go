package terminology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/valpere/agentran/internal/failure"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"csv with header", "terms.csv", "source,target\nAcme,Acmé\ncourt,суд\n"},
		{"csv without header", "terms.csv", "Acme,Acmé\ncourt,суд\n"},
		{"tsv", "terms.tsv", "Source Term\tTranslation\nAcme\tAcmé\ncourt\tсуд\n"},
		{"json", "terms.json", `{"Acme": "Acmé", "court": "суд"}`},
		{"yaml", "terms.yaml", "Acme: Acmé\ncourt: суд\n"},
		{"yml", "terms.yml", "Acme: Acmé\ncourt: суд\n"},
		{"toml", "terms.toml", "Acme = \"Acmé\"\ncourt = \"суд\"\n"},
		{"txt mixed separators", "terms.txt", "# company glossary\n\nAcme\tAcmé\ncourt: суд\nno separator here\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"Acme": "Acmé", "court": "суд"}, m.Entries())
		})
	}
}

func TestParseFile_FirstRowLooksLikeHeader(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    map[string]string
	}{
		{"csv term containing 'term'", "terms.csv", "Terminal,Термінал\nAcme,Acmé\n", map[string]string{"Terminal": "Термінал", "Acme": "Acmé"}},
		{"csv term containing 'term' mid-word", "terms.csv", "Long-term contract,Довгостроковий договір\nAcme,Acmé\n", map[string]string{"Long-term contract": "Довгостроковий договір", "Acme": "Acmé"}},
		{"tsv target containing 'translation'", "terms.tsv", "Determine\tTranslation memory\nAcme\tAcmé\n", map[string]string{"Determine": "Translation memory", "Acme": "Acmé"}},
		{"csv one header word only", "terms.csv", "Source,Джерело\nAcme,Acmé\n", map[string]string{"Source": "Джерело", "Acme": "Acmé"}},
		{"csv padded header", "terms.csv", " Term , Translation \nAcme,Acmé\n", map[string]string{"Acme": "Acmé"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Entries())
		})
	}
}

func TestParseFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Source"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Target"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Acme"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Acmé"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "court"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "суд"))
	path := filepath.Join(t.TempDir(), "terms.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	m, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Acme": "Acmé", "court": "суд"}, m.Entries())
}

func TestParseFile_JSONScalarValues(t *testing.T) {
	m, err := ParseFile(writeFile(t, "n.json", `{"one": 1, "yes": true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"one": "1", "yes": "true"}, m.Entries())
}

func TestParseFile_Unsupported(t *testing.T) {
	_, err := ParseFile(writeFile(t, "terms.docx", "whatever"))
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrUnsupportedInput)
}

func TestParseFile_Malformed(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"json array", "a.json", `["Acme", "Acmé"]`},
		{"json nested", "n.json", `{"Acme": {"uk": "Acmé"}}`},
		{"broken json", "b.json", `{"Acme": `},
		{"single column csv", "one.csv", "Acme\ncourt\n"},
		{"broken toml", "b.toml", "Acme = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrTerminologySource)
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, failure.ErrTerminologySource)
}
