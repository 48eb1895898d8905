package dashboard

import (
	"fmt"
	"strconv"

	"github.com/caio-ishikawa/bountyboard/shared/models"
)

// AverageBounty is zero when there are no vulnerabilities.
func AverageBounty(stats models.Stats) float64 {
	if stats.TotalVulnerabilities <= 0 {
		return 0
	}
	return stats.TotalBounties / float64(stats.TotalVulnerabilities)
}

// ThisMonth falls back to the total for servers that do not report a monthly count.
func ThisMonth(stats models.Stats) int {
	if stats.VulnerabilitiesThisMonth == nil {
		return stats.TotalVulnerabilities
	}
	return *stats.VulnerabilitiesThisMonth
}

func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func FormatOptionalMoney(amount *float64) string {
	if amount == nil {
		return "-"
	}
	return FormatMoney(*amount)
}

// SeverityCounts tallies vulnerabilities per severity for the overview tab.
func SeverityCounts(vulns []models.Vulnerability) map[models.Severity]int {
	counts := make(map[models.Severity]int, len(models.Severities))
	for _, vuln := range vulns {
		counts[vuln.Severity]++
	}
	return counts
}

// ProgramName resolves a program id for display, falling back to the id itself.
func ProgramName(programs []models.Program, id int64) string {
	for _, program := range programs {
		if program.ID == id {
			return program.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func TargetDomain(targets []models.Target, id int64) string {
	for _, target := range targets {
		if target.ID == id {
			return target.Domain
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}
