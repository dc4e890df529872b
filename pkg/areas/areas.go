// Package areas joins departments to their parent regions.
//
// The join key is the raw region code: both datasets come from the same
// source and share its formatting, so no normalization happens here. A
// department whose region cannot be resolved is dropped, because an area
// without a region cannot be aggregated, and the drop is reported in the
// Result rather than hidden.
package areas

import (
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/tables"
)

// Duplicate records a row discarded under DuplicateKeepFirst.
type Duplicate struct {
	Dataset  string `json:"dataset" yaml:"dataset"`
	Code     string `json:"code" yaml:"code"`
	Row      int    `json:"row" yaml:"row"`
	FirstRow int    `json:"first_row" yaml:"first_row"`
}

// Result is the outcome of Join.
type Result struct {
	// Areas holds one row per surviving department, in input order.
	Areas []tables.Area `json:"areas" yaml:"areas"`

	// Unresolved lists departments dropped because their region is unknown.
	Unresolved []*errors.UnresolvedReferenceError `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	// Duplicates lists region and department rows discarded as repeats.
	Duplicates []Duplicate `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Departments is the number of department rows received.
	Departments int `json:"departments" yaml:"departments"`
}

// Dropped is the number of department rows that did not become areas.
func (r *Result) Dropped() int {
	n := len(r.Unresolved)
	for _, d := range r.Duplicates {
		if d.Dataset == constants.DatasetDepartments {
			n++
		}
	}
	return n
}

// Join resolves the region of every department.
//
// With DuplicateKeepFirst (the default) the first row of a repeated
// region or department code wins and the others are listed in
// Result.Duplicates. With DuplicateReject the first repeat aborts the join
// with a DuplicateKeyError.
func Join(regions []tables.Region, departments []tables.Department, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Areas:       make([]tables.Area, 0, len(departments)),
		Departments: len(departments),
	}

	byCode := make(map[string]tables.Region, len(regions))
	regionRow := make(map[string]int, len(regions))
	for i, region := range regions {
		if first, seen := regionRow[region.Code]; seen {
			if o.duplicates == DuplicateReject {
				return nil, errors.NewDuplicateKeyError(constants.DatasetRegions, region.Code, first, i)
			}
			result.Duplicates = append(result.Duplicates, Duplicate{
				Dataset:  constants.DatasetRegions,
				Code:     region.Code,
				Row:      i,
				FirstRow: first,
			})
			continue
		}
		regionRow[region.Code] = i
		byCode[region.Code] = region
	}

	departmentRow := make(map[string]int, len(departments))
	for i, dep := range departments {
		if first, seen := departmentRow[dep.Code]; seen {
			if o.duplicates == DuplicateReject {
				return nil, errors.NewDuplicateKeyError(constants.DatasetDepartments, dep.Code, first, i)
			}
			result.Duplicates = append(result.Duplicates, Duplicate{
				Dataset:  constants.DatasetDepartments,
				Code:     dep.Code,
				Row:      i,
				FirstRow: first,
			})
			continue
		}
		departmentRow[dep.Code] = i

		region, ok := byCode[dep.RegionCode]
		if !ok {
			result.Unresolved = append(result.Unresolved,
				errors.NewUnresolvedReferenceError(constants.StageAreas, "region_code", dep.RegionCode, i))
			continue
		}

		result.Areas = append(result.Areas, tables.Area{
			CodeDep: dep.Code,
			NameDep: dep.Name,
			CodeReg: region.Code,
			NameReg: region.Name,
		})
	}

	return result, nil
}
