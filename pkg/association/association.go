// Package association matches referendum records to areas.
//
// Both tables are keyed on the department code but do not share a
// spelling, so every code goes through codes.Normalize before the join.
// Records outside the mainland scope (overseas, abroad, malformed) are
// excluded by switching on the normalized Kind. Everything that does not
// survive the join is accounted for in the Result:
//
//	len(Joined) + len(Overseas) + len(Invalid) + len(Unmatched) == Records
//
// Areas that receive no record are listed in Silent; they are valid
// departments that contribute zero votes, which is not the same thing as
// a record that could not be placed.
package association

import (
	"github.com/agentstation/tally/pkg/codes"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/tables"
)

// Excluded is a record filtered out before the join. Err is set for
// malformed codes only; overseas records are expected, not errors.
type Excluded struct {
	Row  int                        `json:"row" yaml:"row"`
	Key  string                     `json:"key" yaml:"key"`
	Code codes.Code                 `json:"code" yaml:"code"`
	Raw  string                     `json:"raw" yaml:"raw"`
	Err  *errors.MalformedCodeError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is the outcome of Associate.
type Result struct {
	// Joined holds the matched records, in referendum input order.
	Joined []tables.JoinedRecord

	// Overseas lists records whose code is an overseas or abroad code.
	Overseas []Excluded

	// Invalid lists records whose code could not be classified.
	Invalid []Excluded

	// Unmatched lists in-scope records with no area.
	Unmatched []*errors.UnresolvedReferenceError

	// Silent lists in-scope areas that received no record.
	Silent []tables.Area

	// OutOfScopeAreas lists areas whose own code is not a mainland code.
	OutOfScopeAreas []tables.Area

	// ShadowedAreas lists areas dropped because an earlier area has the
	// same normalized code ("1" and "01").
	ShadowedAreas []tables.Area

	// Records is the number of referendum rows received.
	Records int

	areas []tables.Area
}

// Dropped is the number of records that were not joined.
func (r *Result) Dropped() int {
	return len(r.Overseas) + len(r.Invalid) + len(r.Unmatched)
}

// Accounted reports whether every input record is either joined or
// listed as dropped.
func (r *Result) Accounted() bool {
	return len(r.Joined)+r.Dropped() == r.Records
}

// Areas returns the in-scope areas that took part in the join, in input
// order, including silent ones.
func (r *Result) Areas() []tables.Area {
	return r.areas
}

// Associate joins records to areas on the normalized department code.
func Associate(records []tables.Record, areas []tables.Area) *Result {
	result := &Result{
		Joined:  make([]tables.JoinedRecord, 0, len(records)),
		Records: len(records),
	}

	index := make(map[codes.Code]int, len(areas))
	for _, area := range areas {
		code := codes.Normalize(area.CodeDep)
		if !code.InScope() {
			result.OutOfScopeAreas = append(result.OutOfScopeAreas, area)
			continue
		}
		if _, seen := index[code]; seen {
			result.ShadowedAreas = append(result.ShadowedAreas, area)
			continue
		}
		index[code] = len(result.areas)
		result.areas = append(result.areas, area)
	}

	hits := make([]int, len(result.areas))
	for i, record := range records {
		code := codes.Normalize(record.DepartmentCode)
		switch code.Kind {
		case codes.Overseas:
			result.Overseas = append(result.Overseas, excluded(i, record, code))
			continue
		case codes.Invalid:
			e := excluded(i, record, code)
			e.Err = errors.NewMalformedCodeError(constants.DatasetReferendum, "department_code", record.DepartmentCode)
			result.Invalid = append(result.Invalid, e)
			continue
		}

		pos, ok := index[code]
		if !ok {
			result.Unmatched = append(result.Unmatched,
				errors.NewUnresolvedReferenceError(constants.StageAssociation, "department_code", record.DepartmentCode, i))
			continue
		}

		hits[pos]++
		result.Joined = append(result.Joined, tables.JoinedRecord{
			Area:   result.areas[pos],
			Record: record,
			Code:   code,
		})
	}

	for pos, n := range hits {
		if n == 0 {
			result.Silent = append(result.Silent, result.areas[pos])
		}
	}

	return result
}

func excluded(row int, record tables.Record, code codes.Code) Excluded {
	return Excluded{
		Row:  row,
		Key:  record.Key(),
		Code: code,
		Raw:  record.DepartmentCode,
	}
}
