package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
)

// headerAliases maps normalized header names of the raw exports to the
// column names used by the tables package.
var headerAliases = map[string]string{
	"null":         "null_votes",
	"nuls":         "null_votes",
	"inscrits":     "registered",
	"registred":    "registered",
	"abstention":   "abstentions",
	"choix_a":      "choice_a",
	"choix_b":      "choice_b",
	"commune_code": "town_code",
}

// datasetAliases holds the aliases whose target depends on the dataset:
// "code_dep" is the key of a departments file but a foreign key in the
// referendum, and area-shaped exports use the suffixed names everywhere.
var datasetAliases = map[string]map[string]string{
	constants.DatasetRegions: {
		"code_reg": "code",
		"name_reg": "name",
	},
	constants.DatasetDepartments: {
		"code_dep": "code",
		"name_dep": "name",
		"code_reg": "region_code",
		"region":   "region_code",
	},
	constants.DatasetReferendum: {
		"code_dep": "department_code",
		"name_dep": "department_name",
	},
}

// csvTable is a decoded CSV file with its header resolved.
type csvTable struct {
	path    string
	columns map[string]int
	rows    []csvRow
}

type csvRow struct {
	line   int
	fields []string
	err    error
}

// normalizeHeader turns "Department code" or "department-code" into
// "department_code" and resolves the aliases of dataset.
func normalizeHeader(dataset, h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	if alias, ok := datasetAliases[dataset][h]; ok {
		return alias
	}
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// detectSeparator picks ';' when the header line holds more semicolons
// than commas. French exports use both.
func detectSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func readCSV(dataset, path string, data []byte) (*csvTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectSeparator(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &errors.ParseError{Format: "csv", File: path, Message: "empty file"}
	}
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}

	t := &csvTable{path: path, columns: make(map[string]int, len(header))}
	for i, h := range header {
		name := normalizeHeader(dataset, h)
		if _, seen := t.columns[name]; !seen {
			t.columns[name] = i
		}
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The reader resumes on the next line after a malformed one.
			row := csvRow{err: err}
			if pe, ok := err.(*csv.ParseError); ok {
				row.line = pe.StartLine
			}
			t.rows = append(t.rows, row)
			continue
		}
		line, _ := r.FieldPos(0)
		t.rows = append(t.rows, csvRow{line: line, fields: fields})
	}
	return t, nil
}

// require fails with a ParseError naming the first missing column.
func (t *csvTable) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.columns[c]; !ok {
			return &errors.ParseError{
				Format:  "csv",
				File:    t.path,
				Line:    1,
				Message: fmt.Sprintf("missing column %q", c),
			}
		}
	}
	return nil
}

// get returns the trimmed value of column in row, or "" when the column
// is absent or the row is short.
func (t *csvTable) get(row csvRow, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row.fields) {
		return ""
	}
	return strings.TrimSpace(row.fields[i])
}

// blank reports whether every field of the row is empty.
func blank(row csvRow) bool {
	for _, f := range row.fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseCount parses a non-negative vote count. Thousands separators used
// by spreadsheet exports (spaces, non-breaking spaces) are ignored.
func parseCount(column, s string) (int64, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("%s is empty", column)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", column, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s is negative", column)
	}
	return n, nil
}
