// Package tables defines the value records exchanged by the pipeline
// stages: the three input datasets, the derived Area and JoinedRecord
// rows and the per-region output. Every stage builds new slices and never
// mutates the records it receives.
package tables

import (
	"github.com/agentstation/tally/pkg/codes"
)

// Region is a row of the regions dataset.
type Region struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Department is a row of the departments dataset.
type Department struct {
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	RegionCode string `json:"region_code" yaml:"region_code"`
}

// Area is a department with its resolved region.
type Area struct {
	CodeDep string `json:"code_dep" yaml:"code_dep"`
	NameDep string `json:"name_dep" yaml:"name_dep"`
	CodeReg string `json:"code_reg" yaml:"code_reg"`
	NameReg string `json:"name_reg" yaml:"name_reg"`
}

// Record is the tally of one reporting locality (commune).
type Record struct {
	DepartmentCode string `json:"department_code" yaml:"department_code"`
	DepartmentName string `json:"department_name,omitempty" yaml:"department_name,omitempty"`
	TownCode       string `json:"town_code" yaml:"town_code"`
	TownName       string `json:"town_name,omitempty" yaml:"town_name,omitempty"`
	Counts         `yaml:",inline"`
}

// Key identifies the record in diagnostics, e.g. "75/056".
func (r Record) Key() string {
	return r.DepartmentCode + "/" + r.TownCode
}

// JoinedRecord is a referendum record matched to its area on the
// normalized department code.
type JoinedRecord struct {
	Area   Area       `json:"area" yaml:"area"`
	Record Record     `json:"record" yaml:"record"`
	Code   codes.Code `json:"code" yaml:"code"`
}

// RegionAggregate is the per-region output row. Ratio is only meaningful
// when HasRatio is set, i.e. when its denominator was positive.
type RegionAggregate struct {
	CodeReg  string `json:"code_reg" yaml:"code_reg"`
	NameReg  string `json:"name_reg" yaml:"name_reg"`
	Counts   `yaml:",inline"`
	Ratio    float64 `json:"ratio" yaml:"ratio"`
	HasRatio bool    `json:"has_ratio" yaml:"has_ratio"`
}

// Input bundles the three datasets consumed by a pipeline run.
type Input struct {
	Regions     []Region     `json:"regions" yaml:"regions"`
	Departments []Department `json:"departments" yaml:"departments"`
	Referendum  []Record     `json:"referendum" yaml:"referendum"`
}

// Empty reports whether no dataset holds any row.
func (in Input) Empty() bool {
	return len(in.Regions) == 0 && len(in.Departments) == 0 && len(in.Referendum) == 0
}
