package dashboard

import (
	"strings"

	"github.com/caio-ishikawa/bountyboard/shared/models"
)

// SeverityAll disables the severity filter.
const SeverityAll = "all"

// FilterPrograms keeps programs whose name or platform contains query, ignoring case.
func FilterPrograms(programs []models.Program, query string) []models.Program {
	query = strings.ToLower(query)

	out := make([]models.Program, 0, len(programs))
	for _, program := range programs {
		if contains(program.Name, query) || contains(program.Platform, query) {
			out = append(out, program)
		}
	}

	return out
}

// FilterVulnerabilities keeps vulnerabilities whose title or type contains query and,
// unless severity is SeverityAll, whose severity matches exactly.
func FilterVulnerabilities(vulns []models.Vulnerability, query string, severity string) []models.Vulnerability {
	query = strings.ToLower(query)

	out := make([]models.Vulnerability, 0, len(vulns))
	for _, vuln := range vulns {
		if !contains(vuln.Title, query) && !contains(vuln.VulnerabilityType, query) {
			continue
		}
		if severity != SeverityAll && severity != "" && string(vuln.Severity) != severity {
			continue
		}
		out = append(out, vuln)
	}

	return out
}

// NextSeverityFilter cycles all -> critical -> ... -> info -> all.
func NextSeverityFilter(current string) string {
	if current == SeverityAll || current == "" {
		return string(models.Severities[0])
	}

	for i, severity := range models.Severities {
		if string(severity) == current && i+1 < len(models.Severities) {
			return string(models.Severities[i+1])
		}
	}

	return SeverityAll
}

func contains(s string, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
