package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

// Dictionary column headers.
const (
	dictOriginal = "nom_original"
	dictNew      = "nouveau_nom"
)

// LoadColumnMapping reads the ';'-separated column dictionary at path.
//
// Each row maps nom_original to nouveau_nom; on duplicate keys the last row
// wins. Rows with an empty key or value are skipped. The entry
// annee -> annee_accident is always set, overriding the file.
//
// A missing file yields a *ConfigurationError with CodeDictionaryMissing; an
// unreadable file or one without both columns yields CodeDictionaryMalformed.
func LoadColumnMapping(path string) (ColumnMapping, error) {
	t, _, err := rawcsv.ReadFile(path, rawcsv.Options{Delimiter: ';'})
	if err != nil {
		code := CodeDictionaryMalformed
		if errors.Is(err, os.ErrNotExist) {
			code = CodeDictionaryMissing
		}
		return nil, &ConfigurationError{Code: code, Path: path, Err: err}
	}

	original, ok := dictColumn(t, dictOriginal)
	if !ok {
		return nil, &ConfigurationError{Code: CodeDictionaryMalformed, Path: path,
			Err: fmt.Errorf("missing column %q", dictOriginal)}
	}
	renamed, ok := dictColumn(t, dictNew)
	if !ok {
		return nil, &ConfigurationError{Code: CodeDictionaryMalformed, Path: path,
			Err: fmt.Errorf("missing column %q", dictNew)}
	}

	mapping := make(ColumnMapping, t.NumRows()+1)
	for i := 0; i < t.NumRows(); i++ {
		from, to := original.Cells[i], renamed.Cells[i]
		if !from.Valid || !to.Valid {
			continue
		}
		k, v := strings.TrimSpace(from.String), strings.TrimSpace(to.String)
		if k == "" || v == "" {
			continue
		}
		mapping[k] = v
	}
	mapping[MappingYearKey] = MappingYearName

	return mapping, nil
}

// dictColumn finds a dictionary column, ignoring header case and padding.
func dictColumn(t *frame.Table, name string) (*frame.Column, bool) {
	for _, c := range t.Columns() {
		if NormalizeName(c.Name) == name {
			return c, true
		}
	}
	return nil, false
}
