package areas

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
	"github.com/agentstation/tally/pkg/tables"
)

func newMock(format string, requested *loader.Files) *application.Mock {
	return &application.Mock{
		LoadFunc: func(_ context.Context, files loader.Files) (tables.Input, *loader.Report, error) {
			if requested != nil {
				*requested = files
			}
			return tables.Input{
				Regions: []tables.Region{
					{Code: "11", Name: "Île-de-France"},
					{Code: "11", Name: "Ile de France"},
				},
				Departments: []tables.Department{
					{Code: "75", Name: "Paris", RegionCode: "11"},
					{Code: "99", Name: "Nowhere", RegionCode: "42"},
				},
			}, &loader.Report{}, nil
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

func TestAreas_SkipsReferendum(t *testing.T) {
	var requested loader.Files
	_, err := execute(t, newMock("json", &requested))
	require.NoError(t, err)

	assert.Empty(t, requested.Referendum)
	assert.Equal(t, loader.DefaultFiles().Regions, requested.Regions)
	assert.Equal(t, loader.DefaultFiles().Departments, requested.Departments)
}

func TestAreas_JSON(t *testing.T) {
	out, err := execute(t, newMock("json", nil))
	require.NoError(t, err)

	var result struct {
		Areas      []tables.Area
		Unresolved []struct{ Value string }
		Duplicates []struct {
			Dataset string `json:"dataset"`
			Code    string `json:"code"`
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []tables.Area{{CodeDep: "75", NameDep: "Paris", CodeReg: "11", NameReg: "Île-de-France"}}, result.Areas)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "42", result.Unresolved[0].Value)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "regions", result.Duplicates[0].Dataset)
}

func TestAreas_Markdown(t *testing.T) {
	out, err := execute(t, newMock("markdown", nil))
	require.NoError(t, err)

	assert.Contains(t, out, "1 of 2 departments resolved to a region.")
	assert.Contains(t, out, "## Dropped rows")
	assert.Contains(t, out, `duplicate code "11"`)
}

func TestAreas_RejectDuplicates(t *testing.T) {
	_, err := execute(t, newMock("json", nil), "--duplicates", "reject")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateKey)
}
