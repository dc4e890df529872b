package output

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/areas"
	"github.com/agentstation/tally/pkg/codes"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/pipeline"
	"github.com/agentstation/tally/pkg/tables"
)

// Title turns a column name such as "null_votes" into a header ("Null Votes").
func Title(column string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}

func titles(columns ...string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = Title(c)
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// FormatRatio renders a ratio with a fixed precision, or "-" when it is
// undefined.
func FormatRatio(ratio float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(ratio, 'f', constants.RatioPrecision, 64)
}

// AggregatesData converts region aggregates to table format. A non-nil
// total is appended as the last row.
func AggregatesData(aggs []tables.RegionAggregate, total *tables.RegionAggregate) Data {
	rows := make([][]string, 0, len(aggs)+1)
	for _, agg := range aggs {
		rows = append(rows, aggregateRow(agg))
	}
	if total != nil {
		rows = append(rows, aggregateRow(*total))
	}

	return Data{
		Headers: titles("code_reg", "name_reg", "registered", "abstentions", "null_votes", "choice_a", "choice_b", "ratio"),
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignLeft,
			AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight,
		},
	}
}

func aggregateRow(agg tables.RegionAggregate) []string {
	return []string{
		agg.CodeReg,
		agg.NameReg,
		itoa(agg.Registered),
		itoa(agg.Abstentions),
		itoa(agg.NullVotes),
		itoa(agg.ChoiceA),
		itoa(agg.ChoiceB),
		FormatRatio(agg.Ratio, agg.HasRatio),
	}
}

// AreasData converts areas to table format.
func AreasData(list []tables.Area) Data {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{a.CodeDep, a.NameDep, a.CodeReg, a.NameReg})
	}
	return Data{
		Headers: titles("code_dep", "name_dep", "code_reg", "name_reg"),
		Rows:    rows,
	}
}

// CodesData classifies each input code and renders the result.
func CodesData(inputs []string) Data {
	rows := make([][]string, 0, len(inputs))
	for _, in := range inputs {
		c := codes.Normalize(in)
		value := c.Value
		if value == "" {
			value = "-"
		}
		rows = append(rows, []string{in, c.Kind.String(), value, strconv.FormatBool(c.InScope())})
	}
	return Data{
		Headers: titles("input", "kind", "code", "in_scope"),
		Rows:    rows,
	}
}

// StagesData converts stage reports to table format.
func StagesData(stages []pipeline.StageReport) Data {
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		reasons := make([]string, 0, len(s.Dropped))
		for _, r := range s.Reasons() {
			reasons = append(reasons, fmt.Sprintf("%s=%d", r, s.Dropped[r]))
		}
		dropped := "-"
		if len(reasons) > 0 {
			dropped = strings.Join(reasons, ", ")
		}
		rows = append(rows, []string{s.Stage, strconv.Itoa(s.In), strconv.Itoa(s.Out), dropped})
	}
	return Data{
		Headers:         titles("stage", "in", "out", "dropped"),
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// LoadData converts a loader report to table format.
func LoadData(r *loader.Report) Data {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.Dataset, f.Path, f.Format,
			strconv.Itoa(f.Rows), strconv.Itoa(f.Loaded), strconv.Itoa(len(f.Skipped)),
		})
	}
	return Data{
		Headers: titles("dataset", "file", "format", "rows", "loaded", "skipped"),
		Rows:    rows,
	}
}

// BallotData converts ballot identity mismatches to table format.
func BallotData(mismatches []aggregate.BallotMismatch) Data {
	rows := make([][]string, 0, len(mismatches))
	for _, m := range mismatches {
		rows = append(rows, []string{m.Key, itoa(m.Expressed), itoa(m.TurnoutExpressed)})
	}
	return Data{
		Headers: titles("record", "expressed", "turnout_expressed"),
		Rows:    rows,
	}
}

// ReportDocument assembles the aggregates and the drop accounting of a
// run. load may be nil.
func ReportDocument(result *pipeline.Result, load *loader.Report) *Document {
	aggs := AggregatesData(result.Aggregates, &result.Total)
	stages := StagesData(result.Report.Stages)

	doc := &Document{
		Title: "Referendum results by region",
		Sections: []Section{
			{
				Heading: "Regions",
				Text: []string{fmt.Sprintf("%s Ratio is choice A over the %s denominator.",
					result.Summary(), result.Metadata.Denominator)},
				Table: &aggs,
			},
			{Heading: "Stages", Table: &stages},
		},
	}

	if load != nil {
		files := LoadData(load)
		doc.Sections = append(doc.Sections, Section{Heading: "Files", Table: &files})
	}

	if drops := dropBullets(result.Report); len(drops) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Dropped rows", Bullets: drops})
	}

	if len(result.Report.BallotMismatches) > 0 {
		ballots := BallotData(result.Report.BallotMismatches)
		doc.Sections = append(doc.Sections, Section{Heading: "Ballot identity", Table: &ballots})
	}

	if len(result.Warnings) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Warnings", Bullets: result.Warnings})
	}

	return doc
}

func dropBullets(r pipeline.Report) []string {
	var items []string
	for _, u := range r.Unresolved {
		items = append(items, u.Error())
	}
	for _, u := range r.Unmatched {
		items = append(items, u.Error())
	}
	for _, e := range r.Invalid {
		items = append(items, fmt.Sprintf("%s: row %d: %v", constants.StageAssociation, e.Row, e.Err))
	}
	if n := len(r.Overseas); n > 0 {
		items = append(items, fmt.Sprintf("%s: %d overseas or abroad records", constants.StageAssociation, n))
	}
	for _, a := range r.Silent {
		items = append(items, fmt.Sprintf("%s: department %s (%s) has no record", constants.StageAssociation, a.CodeDep, a.NameDep))
	}
	return items
}

// AreasDocument renders the area joiner output with its drops.
func AreasDocument(res *areas.Result) *Document {
	data := AreasData(res.Areas)
	doc := &Document{
		Title: "Areas",
		Sections: []Section{{
			Text:  []string{fmt.Sprintf("%d of %d departments resolved to a region.", len(res.Areas), res.Departments)},
			Table: &data,
		}},
	}

	var drops []string
	for _, u := range res.Unresolved {
		drops = append(drops, u.Error())
	}
	for _, d := range res.Duplicates {
		drops = append(drops, fmt.Sprintf("%s: duplicate code %q at row %d, first seen at row %d", d.Dataset, d.Code, d.Row, d.FirstRow))
	}
	if len(drops) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Dropped rows", Bullets: drops})
	}
	return doc
}

// ValidationDocument lists the problems found by a run: rows skipped by
// the loader, rows dropped by the pipeline and ballot identity breaks.
func ValidationDocument(result *pipeline.Result, load *loader.Report, issues int) *Document {
	summary := "No issues found."
	if issues > 0 {
		summary = fmt.Sprintf("%d issues found.", issues)
	}

	stages := StagesData(result.Report.Stages)
	doc := &Document{
		Title: "Validation",
		Sections: []Section{
			{Text: []string{summary, result.Summary()}},
			{Heading: "Stages", Table: &stages},
		},
	}

	if load != nil {
		files := LoadData(load)
		doc.Sections = append(doc.Sections, Section{Heading: "Files", Table: &files})

		var skipped []string
		for _, f := range load.Files {
			for _, s := range f.Skipped {
				skipped = append(skipped, fmt.Sprintf("%s: line %d: %s", f.Path, s.Line, s.Reason))
			}
		}
		if len(skipped) > 0 {
			doc.Sections = append(doc.Sections, Section{Heading: "Skipped rows", Bullets: skipped})
		}
	}

	if drops := dropBullets(result.Report); len(drops) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Dropped rows", Bullets: drops})
	}

	if len(result.Report.BallotMismatches) > 0 {
		ballots := BallotData(result.Report.BallotMismatches)
		doc.Sections = append(doc.Sections, Section{Heading: "Ballot identity", Table: &ballots})
	}

	return doc
}
