// Package loader reads the regions, departments and referendum datasets
// from CSV, YAML or JSON files into tables values.
//
// Raw exports carry blank lines, repeated headers and footers. Rows whose
// counts do not parse are skipped and listed in the Report instead of
// failing the load; a missing required column fails it.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/tables"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Files names the dataset files to load. An empty name skips the dataset.
type Files struct {
	Regions     string
	Departments string
	Referendum  string
}

// DefaultFiles returns the file names used by the original exports.
func DefaultFiles() Files {
	return Files{
		Regions:     constants.DefaultRegionsFile,
		Departments: constants.DefaultDepartmentsFile,
		Referendum:  constants.DefaultReferendumFile,
	}
}

// Only keeps the datasets that are also named in mask.
func (f Files) Only(mask Files) Files {
	if mask.Regions == "" {
		f.Regions = ""
	}
	if mask.Departments == "" {
		f.Departments = ""
	}
	if mask.Referendum == "" {
		f.Referendum = ""
	}
	return f
}

// Loader loads datasets through a FileReader.
type Loader struct {
	reader FileReader
}

// New creates a loader reading from reader.
func New(reader FileReader) *Loader {
	return &Loader{reader: reader}
}

// LoadDir loads files from dir.
func LoadDir(ctx context.Context, dir string, files Files) (tables.Input, *Report, error) {
	return New(&FilesystemReader{BasePath: dir}).Load(ctx, files)
}

// Load reads every named dataset.
func (l *Loader) Load(ctx context.Context, files Files) (tables.Input, *Report, error) {
	var (
		in     tables.Input
		report = &Report{}
		err    error
	)

	if files.Regions != "" {
		var fr FileReport
		in.Regions, fr, err = l.Regions(ctx, files.Regions)
		if err != nil {
			return tables.Input{}, nil, err
		}
		report.Files = append(report.Files, fr)
	}
	if files.Departments != "" {
		var fr FileReport
		in.Departments, fr, err = l.Departments(ctx, files.Departments)
		if err != nil {
			return tables.Input{}, nil, err
		}
		report.Files = append(report.Files, fr)
	}
	if files.Referendum != "" {
		var fr FileReport
		in.Referendum, fr, err = l.Referendum(ctx, files.Referendum)
		if err != nil {
			return tables.Input{}, nil, err
		}
		report.Files = append(report.Files, fr)
	}

	return in, report, nil
}

// Regions loads the regions dataset. Required columns: code, name.
func (l *Loader) Regions(ctx context.Context, path string) ([]tables.Region, FileReport, error) {
	fr, data, err := l.open(constants.DatasetRegions, path)
	if err != nil {
		return nil, fr, err
	}

	var regions []tables.Region
	switch fr.Format {
	case FormatCSV:
		t, err := readCSV(fr.Dataset, path, data)
		if err != nil {
			return nil, fr, err
		}
		if err := t.require("code", "name"); err != nil {
			return nil, fr, err
		}
		for _, row := range t.rows {
			if !t.usable(&fr, row) || !t.keyed(&fr, row) {
				continue
			}
			regions = append(regions, tables.Region{Code: t.get(row, "code"), Name: t.get(row, "name")})
		}
	default:
		if err := decode(fr, data, &regions); err != nil {
			return nil, fr, err
		}
		fr.Rows = len(regions)
	}

	fr.Loaded = len(regions)
	l.logLoaded(ctx, fr)
	return regions, fr, nil
}

// Departments loads the departments dataset. Required columns: code, name,
// region_code.
func (l *Loader) Departments(ctx context.Context, path string) ([]tables.Department, FileReport, error) {
	fr, data, err := l.open(constants.DatasetDepartments, path)
	if err != nil {
		return nil, fr, err
	}

	var departments []tables.Department
	switch fr.Format {
	case FormatCSV:
		t, err := readCSV(fr.Dataset, path, data)
		if err != nil {
			return nil, fr, err
		}
		if err := t.require("code", "name", "region_code"); err != nil {
			return nil, fr, err
		}
		for _, row := range t.rows {
			if !t.usable(&fr, row) || !t.keyed(&fr, row) {
				continue
			}
			departments = append(departments, tables.Department{
				Code:       t.get(row, "code"),
				Name:       t.get(row, "name"),
				RegionCode: t.get(row, "region_code"),
			})
		}
	default:
		if err := decode(fr, data, &departments); err != nil {
			return nil, fr, err
		}
		fr.Rows = len(departments)
	}

	fr.Loaded = len(departments)
	l.logLoaded(ctx, fr)
	return departments, fr, nil
}

// referendumCounts lists the count columns in tables.Counts order.
var referendumCounts = []string{"registered", "abstentions", "null_votes", "choice_a", "choice_b"}

// Referendum loads the referendum dataset. Required columns:
// department_code, town_code and the five counts.
func (l *Loader) Referendum(ctx context.Context, path string) ([]tables.Record, FileReport, error) {
	fr, data, err := l.open(constants.DatasetReferendum, path)
	if err != nil {
		return nil, fr, err
	}

	var records []tables.Record
	switch fr.Format {
	case FormatCSV:
		t, err := readCSV(fr.Dataset, path, data)
		if err != nil {
			return nil, fr, err
		}
		if err := t.require(append([]string{"department_code", "town_code"}, referendumCounts...)...); err != nil {
			return nil, fr, err
		}
		for _, row := range t.rows {
			if !t.usable(&fr, row) {
				continue
			}
			record, err := t.record(row)
			if err != nil {
				fr.skip(row.line, err.Error())
				continue
			}
			records = append(records, record)
		}
	default:
		var decoded []tables.Record
		if err := decode(fr, data, &decoded); err != nil {
			return nil, fr, err
		}
		fr.Rows = len(decoded)
		for i, r := range decoded {
			if err := checkCounts(r.Counts); err != nil {
				fr.skip(i+1, err.Error())
				continue
			}
			records = append(records, r)
		}
	}

	fr.Loaded = len(records)
	l.logLoaded(ctx, fr)
	return records, fr, nil
}

// usable counts the row and reports whether it holds data. Unreadable
// and blank rows are recorded as skipped.
func (t *csvTable) usable(fr *FileReport, row csvRow) bool {
	fr.Rows++
	if row.err != nil {
		fr.skip(row.line, row.err.Error())
		return false
	}
	if blank(row) {
		fr.skip(row.line, "blank row")
		return false
	}
	return true
}

// keyed skips rows without a code.
func (t *csvTable) keyed(fr *FileReport, row csvRow) bool {
	if t.get(row, "code") == "" {
		fr.skip(row.line, "code is empty")
		return false
	}
	return true
}

func (t *csvTable) record(row csvRow) (tables.Record, error) {
	var values [5]int64
	for i, column := range referendumCounts {
		n, err := parseCount(column, t.get(row, column))
		if err != nil {
			return tables.Record{}, err
		}
		values[i] = n
	}
	return tables.Record{
		DepartmentCode: t.get(row, "department_code"),
		DepartmentName: t.get(row, "department_name"),
		TownCode:       t.get(row, "town_code"),
		TownName:       t.get(row, "town_name"),
		Counts: tables.Counts{
			Registered:  values[0],
			Abstentions: values[1],
			NullVotes:   values[2],
			ChoiceA:     values[3],
			ChoiceB:     values[4],
		},
	}, nil
}

func checkCounts(c tables.Counts) error {
	for _, f := range c.Fields() {
		if f.Value < 0 {
			return fmt.Errorf("%s is negative", f.Name)
		}
	}
	return nil
}

// open reads path and determines its format from the extension.
func (l *Loader) open(dataset, path string) (FileReport, []byte, error) {
	fr := FileReport{Dataset: dataset, Path: path}

	format, err := FormatOf(path)
	if err != nil {
		return fr, nil, err
	}
	fr.Format = format

	data, err := l.reader.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fr, nil, errors.NewNotFoundError(dataset+" file", path)
		}
		return fr, nil, errors.WrapIO("read", path, err)
	}
	return fr, data, nil
}

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.NewValidationError("file", path, "unsupported extension, expected .csv, .yaml, .yml or .json")
	}
}

// decode unmarshals a YAML or JSON list.
func decode(fr FileReport, data []byte, v any) error {
	var err error
	switch fr.Format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatJSON:
		err = json.Unmarshal(data, v)
	}
	return errors.WrapParse(fr.Format, fr.Path, err)
}

func (l *Loader) logLoaded(ctx context.Context, fr FileReport) {
	ctx = logging.WithFile(logging.WithDataset(ctx, fr.Dataset), fr.Path)
	logger := logging.FromContext(ctx)
	logger.Info().
		Str("format", fr.Format).
		Int("rows", fr.Rows).
		Int("loaded", fr.Loaded).
		Int("skipped", len(fr.Skipped)).
		Msg("Dataset loaded")
	for _, s := range fr.Skipped {
		logger.Debug().
			Int("line", s.Line).
			Str("reason", s.Reason).
			Msg("Row skipped")
	}
}
