package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/pipeline"
	"github.com/agentstation/tally/pkg/tables"
)

func testInput() tables.Input {
	return tables.Input{
		Regions: []tables.Region{
			{Code: "11", Name: "Île-de-France"},
			{Code: "84", Name: "Auvergne-Rhône-Alpes"},
		},
		Departments: []tables.Department{
			{Code: "01", Name: "Ain", RegionCode: "84"},
			{Code: "75", Name: "Paris", RegionCode: "11"},
		},
		Referendum: []tables.Record{
			{DepartmentCode: "1", TownCode: "004", Counts: tables.Counts{Registered: 10, Abstentions: 2, NullVotes: 1, ChoiceA: 4, ChoiceB: 3}},
			// Turnout 80 for 75 expressed ballots.
			{DepartmentCode: "75", TownCode: "056", Counts: tables.Counts{Registered: 100, Abstentions: 20, NullVotes: 0, ChoiceA: 40, ChoiceB: 35}},
			{DepartmentCode: "52", TownCode: "121", Counts: tables.Counts{Registered: 8, Abstentions: 2, NullVotes: 0, ChoiceA: 3, ChoiceB: 3}},
		},
	}
}

func newMock(format string) *application.Mock {
	return &application.Mock{
		LoadFunc: func(context.Context, loader.Files) (tables.Input, *loader.Report, error) {
			return testInput(), &loader.Report{}, nil
		},
		OutputFormatFunc: func() string { return format },
	}
}

func execute(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAggregate_JSON(t *testing.T) {
	out, err := execute(t, newMock("json"))
	require.NoError(t, err)

	var aggs []tables.RegionAggregate
	require.NoError(t, json.Unmarshal([]byte(out), &aggs))
	require.Len(t, aggs, 2)
	assert.Equal(t, "11", aggs[0].CodeReg)
	assert.InDelta(t, 40.0/75.0, aggs[0].Ratio, 1e-9)
	assert.Equal(t, "84", aggs[1].CodeReg)
	assert.Equal(t, int64(10), aggs[1].Registered)
}

func TestAggregate_DenominatorFlag(t *testing.T) {
	out, err := execute(t, newMock("json"), "--denominator", "turnout")
	require.NoError(t, err)

	var aggs []tables.RegionAggregate
	require.NoError(t, json.Unmarshal([]byte(out), &aggs))
	assert.InDelta(t, 0.5, aggs[0].Ratio, 1e-9)
}

func TestAggregate_SettingsDefaults(t *testing.T) {
	mock := newMock("json")
	mock.SettingsFunc = func() application.Settings {
		return application.Settings{Files: loader.DefaultFiles(), Denominator: "turnout"}
	}

	out, err := execute(t, mock)
	require.NoError(t, err)

	var aggs []tables.RegionAggregate
	require.NoError(t, json.Unmarshal([]byte(out), &aggs))
	assert.InDelta(t, 0.5, aggs[0].Ratio, 1e-9, "settings apply when the flag is not given")

	out, err = execute(t, mock, "--denominator", "expressed")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &aggs))
	assert.InDelta(t, 40.0/75.0, aggs[0].Ratio, 1e-9, "the flag overrides settings")
}

func TestAggregate_StrictBallots(t *testing.T) {
	_, err := execute(t, newMock("json"), "--strict-ballots")
	require.Error(t, err)

	var ballotErr *errors.BallotMismatchError
	assert.ErrorAs(t, err, &ballotErr)
}

func TestAggregate_FailOnUnmatched(t *testing.T) {
	_, err := execute(t, newMock("json"), "--fail-on-unmatched")
	require.Error(t, err)

	var stageErr *errors.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "association", stageErr.Stage)
}

func TestAggregate_InvalidFlagValue(t *testing.T) {
	_, err := execute(t, newMock("json"), "--denominator", "registered")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestAggregate_Report(t *testing.T) {
	out, err := execute(t, newMock("json"), "--report")
	require.NoError(t, err)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Aggregates, 2)
	require.Len(t, result.Report.Unmatched, 1)
	assert.Equal(t, "52", result.Report.Unmatched[0].Value)
	assert.NotEmpty(t, result.Warnings)
}

func TestAggregate_Markdown(t *testing.T) {
	out, err := execute(t, newMock("markdown"), "--report")
	require.NoError(t, err)

	assert.Contains(t, out, "# Referendum results by region")
	assert.Contains(t, out, "## Dropped rows")
	assert.Contains(t, out, "Auvergne-Rhône-Alpes")
}

func TestAggregate_LoadError(t *testing.T) {
	mock := newMock("json")
	mock.LoadFunc = func(context.Context, loader.Files) (tables.Input, *loader.Report, error) {
		return tables.Input{}, nil, errors.NewNotFoundError("regions file", "data/regions.csv")
	}

	_, err := execute(t, mock)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestAggregate_RejectsArgs(t *testing.T) {
	_, err := execute(t, newMock("json"), "extra")
	assert.Error(t, err)
}

func TestAggregate_WarningsAlert(t *testing.T) {
	cmd := NewCommand(newMock("json"))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, errOut.String(), "! Aggregated 2 of 3 records into 2 regions")
	assert.Contains(t, errOut.String(), "   1 records dropped: department code not found")
	assert.NotContains(t, out.String(), "dropped")
}

func TestAggregate_QuietAlert(t *testing.T) {
	mock := newMock("json")
	mock.QuietFunc = func() bool { return true }

	cmd := NewCommand(mock)
	var errOut bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Empty(t, errOut.String())
}
