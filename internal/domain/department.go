package domain

import (
	"sort"
	"time"
)

// Canonical pipeline stage names. Jobs move through departments in this
// exact order; the first stage receives new jobs and the last one triggers
// deletion.
const (
	DeptDesign    = "Design/Customer Service"
	DeptBilling   = "Billing"
	DeptPrinting  = "Printing"
	DeptFinishing = "Finishing"
	DeptReady     = "Ready for Delivery"
	DeptDelivered = "Delivered"
)

// EntryStageName is where every new job starts.
const EntryStageName = DeptDesign

// TerminalStageName is the stage whose reach deletes the job.
const TerminalStageName = DeptDelivered

// PipelineOrder is the single source of truth for stage progression. Both
// the board's column order and the client tracker's stepper derive from it.
var PipelineOrder = []string{
	DeptDesign,
	DeptBilling,
	DeptPrinting,
	DeptFinishing,
	DeptReady,
	DeptDelivered,
}

var pipelineRank = func() map[string]int {
	ranks := make(map[string]int, len(PipelineOrder))
	for i, name := range PipelineOrder {
		ranks[name] = i
	}
	return ranks
}()

// StageRank returns the position of a department name within the pipeline.
// Unknown names report ok=false and sort after every known stage.
func StageRank(name string) (int, bool) {
	rank, ok := pipelineRank[name]
	return rank, ok
}

// Department represents one pipeline stage. Reference data, seeded by
// migration; this service never mutates it.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// SortDepartments orders departments by canonical pipeline rank in place.
// Departments with unrecognized names land after all known stages; their
// relative order among themselves is unspecified.
func SortDepartments(departments []Department) {
	sort.SliceStable(departments, func(i, j int) bool {
		ri, iKnown := StageRank(departments[i].Name)
		rj, jKnown := StageRank(departments[j].Name)
		if !iKnown {
			return false
		}
		if !jKnown {
			return true
		}
		return ri < rj
	})
}

// StageIndex locates a status string within an ordered department list.
// Returns -1 when the status matches no department name.
func StageIndex(departments []Department, status string) int {
	for i, dept := range departments {
		if dept.Name == status {
			return i
		}
	}
	return -1
}
