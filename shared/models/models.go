package models

import (
	"fmt"
	"strings"
	"time"
)

type Table string
type Severity string
type VulnStatus string
type ProgramStatus string

const (
	ProgramTable       Table = "program"
	TargetTable        Table = "target"
	VulnerabilityTable Table = "vulnerability"

	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
	Info     Severity = "info"

	Draft     VulnStatus = "draft"
	Reported  VulnStatus = "reported"
	Triaged   VulnStatus = "triaged"
	Resolved  VulnStatus = "resolved"
	Duplicate VulnStatus = "duplicate"

	Active ProgramStatus = "active"
	Paused ProgramStatus = "paused"
	Closed ProgramStatus = "closed"
)

// Ordered from most to least severe
var Severities = []Severity{Critical, High, Medium, Low, Info}

var VulnStatuses = []VulnStatus{Draft, Reported, Triaged, Resolved, Duplicate}

var ProgramStatuses = []ProgramStatus{Active, Paused, Closed}

type Program struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Platform  string        `json:"platform"`
	Scope     *string       `json:"scope"`
	MaxBounty *float64      `json:"max_bounty"`
	Status    ProgramStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type Target struct {
	ID        int64     `json:"id"`
	ProgramID int64     `json:"program_id"`
	Domain    string    `json:"domain"`
	IPAddress *string   `json:"ip_address"`
	TechStack *string   `json:"tech_stack"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type Vulnerability struct {
	ID                int64      `json:"id"`
	TargetID          int64      `json:"target_id"`
	Title             string     `json:"title"`
	Severity          Severity   `json:"severity"`
	VulnerabilityType string     `json:"vulnerability_type"`
	Description       *string    `json:"description"`
	Status            VulnStatus `json:"status"`
	BountyAmount      *float64   `json:"bounty_amount"`
	ReportedAt        *time.Time `json:"reported_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Stats struct {
	TotalPrograms        int     `json:"total_programs"`
	TotalTargets         int     `json:"total_targets"`
	TotalVulnerabilities int     `json:"total_vulnerabilities"`
	TotalBounties        float64 `json:"total_bounties"`
	// Vulnerabilities created since the start of the current calendar month (UTC).
	// Older servers omit it.
	VulnerabilitiesThisMonth *int `json:"vulnerabilities_this_month,omitempty"`
}

func ParseSeverity(severityStr string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(severityStr)) {
	case "critical":
		return Critical, nil
	case "high":
		return High, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	case "info":
		return Info, nil
	default:
		return "", fmt.Errorf("Could not convert %s to Severity", severityStr)
	}
}

func ParseVulnStatus(statusStr string) (VulnStatus, error) {
	switch strings.ToLower(strings.TrimSpace(statusStr)) {
	case "draft":
		return Draft, nil
	case "reported":
		return Reported, nil
	case "triaged":
		return Triaged, nil
	case "resolved":
		return Resolved, nil
	case "duplicate":
		return Duplicate, nil
	default:
		return "", fmt.Errorf("Could not convert %s to VulnStatus", statusStr)
	}
}

func ParseProgramStatus(statusStr string) (ProgramStatus, error) {
	switch strings.ToLower(strings.TrimSpace(statusStr)) {
	case "active":
		return Active, nil
	case "paused":
		return Paused, nil
	case "closed":
		return Closed, nil
	default:
		return "", fmt.Errorf("Could not convert %s to ProgramStatus", statusStr)
	}
}
