// Package aggregate groups joined referendum records by region.
//
// Aggregation performs no filtering: the totals of the output equal the
// totals of the joined records, field by field. CheckConservation turns
// that law into an error the pipeline can abort on.
package aggregate

import (
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/tables"
)

// Aggregate sums the counts of joined records per region. The result has
// one row per region code, sorted by code. Ratios are left unset, see
// Ratios.
func Aggregate(joined []tables.JoinedRecord) []tables.RegionAggregate {
	return Regions(joined, nil)
}

// Regions is Aggregate with a list of areas whose regions must appear in
// the output even if none of their departments received a record. Such
// regions get zero counts instead of vanishing from the table.
func Regions(joined []tables.JoinedRecord, areas []tables.Area) []tables.RegionAggregate {
	byCode := make(map[string]*tables.RegionAggregate)

	group := func(code, name string) *tables.RegionAggregate {
		agg, ok := byCode[code]
		if !ok {
			agg = &tables.RegionAggregate{CodeReg: code, NameReg: name}
			byCode[code] = agg
		}
		return agg
	}

	for _, area := range areas {
		group(area.CodeReg, area.NameReg)
	}
	for _, j := range joined {
		agg := group(j.Area.CodeReg, j.Area.NameReg)
		agg.Counts = agg.Counts.Add(j.Record.Counts)
	}

	out := make([]tables.RegionAggregate, 0, len(byCode))
	for _, agg := range byCode {
		out = append(out, *agg)
	}
	slices.SortFunc(out, func(a, b tables.RegionAggregate) int {
		return compareCodes(a.CodeReg, b.CodeReg)
	})
	return out
}

// CheckConservation verifies that aggregs carry exactly the totals of
// joined, for every count, and that no region appears twice.
func CheckConservation(joined []tables.JoinedRecord, aggs []tables.RegionAggregate) error {
	seen := make(map[string]bool, len(aggs))
	for _, agg := range aggs {
		if seen[agg.CodeReg] {
			return errors.NewDuplicateKeyError(constants.StageAggregate, agg.CodeReg)
		}
		seen[agg.CodeReg] = true
	}

	want := tables.SumJoined(joined).Fields()
	got := tables.SumAggregates(aggs).Fields()
	for i := range want {
		if want[i].Value != got[i].Value {
			return errors.NewConservationViolationError(constants.StageAggregate, want[i].Name, want[i].Value, got[i].Value)
		}
	}
	return nil
}

// Totals returns a single aggregate summing every region, keyed "total".
func Totals(aggs []tables.RegionAggregate, d Denominator) tables.RegionAggregate {
	total := tables.RegionAggregate{CodeReg: "total", NameReg: "Total", Counts: tables.SumAggregates(aggs)}
	total.Ratio, total.HasRatio = Ratio(total.Counts, d)
	return total
}

// compareCodes orders numeric codes by value and everything else
// lexically after them.
func compareCodes(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na - nb
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
