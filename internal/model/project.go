package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectType classifies projects.
type ProjectType string

// Project type constants.
const (
	ProjectTypeTrip       ProjectType = "TRIP"
	ProjectTypeJob        ProjectType = "JOB"
	ProjectTypeSideHustle ProjectType = "SIDE_HUSTLE"
	ProjectTypeEvent      ProjectType = "EVENT"
	ProjectTypeOther      ProjectType = "OTHER"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project status constants.
const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Project groups transactions and investments under a common goal.
type Project struct {
	StartDate    time.Time
	EndDate      *time.Time
	TotalBudget  decimal.NullDecimal
	ID           string
	OwnerID      string
	Name         string
	CurrencyCode string
	Type         ProjectType
	Status       ProjectStatus
}

// IsTimeBoxed reports whether the project cost is spread across its duration.
func (p *Project) IsTimeBoxed() bool {
	return p.Type == ProjectTypeTrip || p.Type == ProjectTypeEvent
}

// IsEarning reports whether the project is expected to produce a return.
func (p *Project) IsEarning() bool {
	return p.Type == ProjectTypeSideHustle || p.Type == ProjectTypeJob
}
