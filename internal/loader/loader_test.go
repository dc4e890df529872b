package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/tables"
)

const regionsCSV = `id,code,name,slug
1,01,Guadeloupe,guadeloupe
8,11,Île-de-France,ile-de-france
13,94,Corse,corse
`

const departmentsCSV = `id,region_code,code,name,slug
1,84,01,Ain,ain
30,94,2A,Corse-du-Sud,corse-du-sud
76,11,75,Paris,paris
97,01,971,Guadeloupe,guadeloupe
,11,,Nameless,
`

const referendumCSV = "Department code;Department name;Town code;Town name;Registered;Abstentions;Null;Choice A;Choice B\n" +
	"01;AIN;1;L'Abergement-Clémenciat;592;374;5;123;90\n" +
	"75;PARIS;56;Paris;100;20;5;40;35\n" +
	"\n" +
	"ZZ;FRANCAIS DE L'ETRANGER;1;Abroad;1000;100;0;450;450\n" +
	"Department code;Department name;Town code;Town name;Registered;Abstentions;Null;Choice A;Choice B\n" +
	";;;;;;;;\n"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), constants.FilePermissions))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	logging.DisableLoggingForTest(t)

	dir := writeFiles(t, map[string]string{
		"regions.csv":     regionsCSV,
		"departments.csv": departmentsCSV,
		"referendum.csv":  referendumCSV,
	})

	in, report, err := LoadDir(context.Background(), dir, DefaultFiles())
	require.NoError(t, err)

	wantRegions := []tables.Region{
		{Code: "01", Name: "Guadeloupe"},
		{Code: "11", Name: "Île-de-France"},
		{Code: "94", Name: "Corse"},
	}
	if diff := cmp.Diff(wantRegions, in.Regions); diff != "" {
		t.Errorf("Regions mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, in.Departments, 4)
	assert.Equal(t, tables.Department{Code: "2A", Name: "Corse-du-Sud", RegionCode: "94"}, in.Departments[1])

	wantRecords := []tables.Record{
		{
			DepartmentCode: "01", DepartmentName: "AIN", TownCode: "1", TownName: "L'Abergement-Clémenciat",
			Counts: tables.Counts{Registered: 592, Abstentions: 374, NullVotes: 5, ChoiceA: 123, ChoiceB: 90},
		},
		{
			DepartmentCode: "75", DepartmentName: "PARIS", TownCode: "56", TownName: "Paris",
			Counts: tables.Counts{Registered: 100, Abstentions: 20, NullVotes: 5, ChoiceA: 40, ChoiceB: 35},
		},
		{
			DepartmentCode: "ZZ", DepartmentName: "FRANCAIS DE L'ETRANGER", TownCode: "1", TownName: "Abroad",
			Counts: tables.Counts{Registered: 1000, Abstentions: 100, NullVotes: 0, ChoiceA: 450, ChoiceB: 450},
		},
	}
	if diff := cmp.Diff(wantRecords, in.Referendum); diff != "" {
		t.Errorf("Referendum mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, report.Files, 3)
	assert.Equal(t, 3, report.Skipped())

	deps, ok := report.File(constants.DatasetDepartments)
	require.True(t, ok)
	assert.Equal(t, []Skip{{Line: 6, Reason: "code is empty"}}, deps.Skipped)

	ref, ok := report.File(constants.DatasetReferendum)
	require.True(t, ok)
	assert.Equal(t, FormatCSV, ref.Format)
	assert.Equal(t, 5, ref.Rows)
	assert.Equal(t, 3, ref.Loaded)
	assert.Equal(t, []Skip{
		{Line: 6, Reason: `registered "Registered" is not an integer`},
		{Line: 7, Reason: "blank row"},
	}, ref.Skipped)
}

func TestLoadPartial(t *testing.T) {
	logging.DisableLoggingForTest(t)

	dir := writeFiles(t, map[string]string{
		"regions.csv":     regionsCSV,
		"departments.csv": departmentsCSV,
	})

	files := DefaultFiles()
	files.Referendum = ""
	in, report, err := LoadDir(context.Background(), dir, files)
	require.NoError(t, err)
	assert.Len(t, in.Regions, 3)
	assert.Empty(t, in.Referendum)
	assert.Len(t, report.Files, 2)
}

func TestFilesOnly(t *testing.T) {
	mask := Files{Regions: "r.yaml", Departments: "d.json"}
	assert.Equal(t, Files{Regions: "regions.csv", Departments: "departments.csv"}, DefaultFiles().Only(mask))
	assert.Equal(t, Files{}, DefaultFiles().Only(Files{}))
}

func TestLoadYAMLAndJSON(t *testing.T) {
	logging.DisableLoggingForTest(t)

	fsys := fstest.MapFS{
		"regions.json": {Data: []byte(`[{"code":"11","name":"Île-de-France"}]`)},
		"departments.yml": {Data: []byte(`
- code: "75"
  name: Paris
  region_code: "11"
`)},
		"referendum.yaml": {Data: []byte(`
- department_code: "75"
  town_code: "056"
  registered: 100
  abstentions: 20
  null_votes: 5
  choice_a: 40
  choice_b: 35
- department_code: "75"
  town_code: "101"
  registered: 10
  abstentions: -1
  null_votes: 0
  choice_a: 5
  choice_b: 6
`)},
	}

	in, report, err := New(&FSReader{FS: fsys}).Load(context.Background(), Files{
		Regions:     "regions.json",
		Departments: "departments.yml",
		Referendum:  "referendum.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, []tables.Region{{Code: "11", Name: "Île-de-France"}}, in.Regions)
	assert.Equal(t, []tables.Department{{Code: "75", Name: "Paris", RegionCode: "11"}}, in.Departments)
	require.Len(t, in.Referendum, 1)
	assert.Equal(t, tables.Counts{Registered: 100, Abstentions: 20, NullVotes: 5, ChoiceA: 40, ChoiceB: 35}, in.Referendum[0].Counts)

	ref, _ := report.File(constants.DatasetReferendum)
	assert.Equal(t, FormatYAML, ref.Format)
	assert.Equal(t, 2, ref.Rows)
	assert.Equal(t, []Skip{{Line: 2, Reason: "abstentions is negative"}}, ref.Skipped)
}

func TestLoadErrors(t *testing.T) {
	logging.DisableLoggingForTest(t)

	fsys := fstest.MapFS{
		"missing_column.csv": {Data: []byte("Department code;Town code;Registered;Abstentions;Null;Choice A\n01;1;10;1;1;8\n")},
		"broken.yaml":        {Data: []byte("- code: [unterminated\n")},
		"empty.csv":          {Data: []byte("")},
		"regions.txt":        {Data: []byte("code,name\n")},
	}
	l := New(&FSReader{FS: fsys})
	ctx := context.Background()

	t.Run("missing column", func(t *testing.T) {
		_, _, err := l.Referendum(ctx, "missing_column.csv")
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Message, `"choice_b"`)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, _, err := l.Regions(ctx, "broken.yaml")
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, FormatYAML, parseErr.Format)
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := l.Regions(ctx, "empty.csv")
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "empty file", parseErr.Message)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := l.Departments(ctx, "nope.csv")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, _, err := l.Regions(ctx, "regions.txt")
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		dataset string
		in      string
		want    string
	}{
		{constants.DatasetReferendum, "Department code", "department_code"},
		{constants.DatasetRegions, "\ufeffcode", "code"},
		{constants.DatasetReferendum, "Null", "null_votes"},
		{constants.DatasetReferendum, "Choice-A", "choice_a"},
		{constants.DatasetReferendum, "  Registered ", "registered"},
		{constants.DatasetReferendum, "code_dep", "department_code"},
		{constants.DatasetDepartments, "code_dep", "code"},
		{constants.DatasetDepartments, "code_reg", "region_code"},
		{constants.DatasetRegions, "code_reg", "code"},
		{constants.DatasetRegions, "name_reg", "name"},
		{constants.DatasetRegions, "name_dep", "name_dep"},
		{constants.DatasetRegions, "slug", "slug"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.dataset, tt.in), "%s %q", tt.dataset, tt.in)
	}
}

func TestLoadAreaShapedHeaders(t *testing.T) {
	logging.DisableLoggingForTest(t)

	fsys := fstest.MapFS{
		"regions.csv":     {Data: []byte("code_reg,name_reg\n11,Île-de-France\n")},
		"departments.csv": {Data: []byte("code_dep,name_dep,code_reg\n75,Paris,11\n")},
	}
	l := New(&FSReader{FS: fsys})
	ctx := context.Background()

	regions, _, err := l.Regions(ctx, "regions.csv")
	require.NoError(t, err)
	assert.Equal(t, []tables.Region{{Code: "11", Name: "Île-de-France"}}, regions)

	departments, _, err := l.Departments(ctx, "departments.csv")
	require.NoError(t, err)
	assert.Equal(t, []tables.Department{{Code: "75", Name: "Paris", RegionCode: "11"}}, departments)
}

func TestDetectSeparator(t *testing.T) {
	assert.Equal(t, ';', detectSeparator([]byte("a;b;c\n1,5;2;3\n")))
	assert.Equal(t, ',', detectSeparator([]byte("a,b,c\n")))
	assert.Equal(t, ',', detectSeparator([]byte("single")))
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr string
	}{
		{in: "592", want: 592},
		{in: "1 234", want: 1234},
		{in: "1\u00a0234", want: 1234},
		{in: "", wantErr: "registered is empty"},
		{in: "12.5", wantErr: `registered "12.5" is not an integer`},
		{in: "-3", wantErr: "registered is negative"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount("registered", tt.in)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]string{
		"data/referendum.csv": FormatCSV,
		"REGIONS.YML":         FormatYAML,
		"departments.yaml":    FormatYAML,
		"input.json":          FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoadLogsSkips(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)

	dir := writeFiles(t, map[string]string{"referendum.csv": referendumCSV})
	_, _, err := LoadDir(context.Background(), dir, Files{Referendum: "referendum.csv"})
	require.NoError(t, err)

	entry, ok := logs.Find("Dataset loaded")
	require.True(t, ok)
	assert.Equal(t, float64(2), entry["skipped"])
	assert.Equal(t, "referendum", entry["dataset"])
	assert.Equal(t, "referendum.csv", entry["file"])
	assert.Equal(t, 2, countMessages(logs, "Row skipped"))

	skipped, ok := logs.Find("Row skipped")
	require.True(t, ok)
	assert.Equal(t, "referendum", skipped["dataset"])
}

func countMessages(logs *logging.TestLogger, msg string) int {
	n := 0
	for _, e := range logs.Entries() {
		if e["message"] == msg {
			n++
		}
	}
	return n
}
