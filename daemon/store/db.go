package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	_ "github.com/mattn/go-sqlite3"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

type Database struct {
	connection *sql.DB
	now        func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func Init(path string) (Database, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return Database{}, fmt.Errorf("Failed to start DB connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Create tables on startup
	if _, err := db.Exec(createTablesQuery); err != nil {
		return Database{}, fmt.Errorf("Failed to create tables: %w", err)
	}

	return Database{
		connection: db,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of db that stamps records with now. Used by tests.
func (db Database) WithClock(now func() time.Time) Database {
	db.now = now
	return db
}

func (db Database) Close() error {
	return db.connection.Close()
}

func (db Database) timestamp() string {
	return db.now().UTC().Format(timestampLayout)
}

func (db Database) InsertProgram(program models.ProgramCreate) (*models.Program, error) {
	res, err := db.connection.Exec(
		`INSERT INTO program (name, platform, scope, max_bounty, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		program.Name,
		program.Platform,
		program.Scope,
		program.MaxBounty,
		program.Status,
		db.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to insert program: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("Failed to get inserted program id: %w", err)
	}

	return db.GetProgram(id)
}

func (db Database) GetProgram(id int64) (*models.Program, error) {
	program, err := scanProgram(db.connection.QueryRow(`SELECT `+programColumns+` FROM program WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("Failed to get program: %w", err)
	}

	return &program, nil
}

func (db Database) GetAllPrograms() ([]models.Program, error) {
	rows, err := db.connection.Query(`SELECT ` + programColumns + ` FROM program ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("Failed to get all programs: %w", err)
	}
	defer rows.Close()

	results := make([]models.Program, 0)
	for rows.Next() {
		item, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("Failed to scan program row: %w", err)
		}

		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Rows error when getting programs: %w", err)
	}

	return results, nil
}

// RemoveProgram deletes the program together with its targets and their vulnerabilities.
// Returns false if no program had the given id.
func (db Database) RemoveProgram(id int64) (bool, error) {
	tx, err := db.connection.Begin()
	if err != nil {
		return false, fmt.Errorf("Failed to begin program delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM vulnerability WHERE target_id IN (SELECT id FROM target WHERE program_id = ?)`, id,
	); err != nil {
		return false, fmt.Errorf("Failed to delete program vulnerabilities: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM target WHERE program_id = ?`, id); err != nil {
		return false, fmt.Errorf("Failed to delete program targets: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM program WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("Failed to delete program: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Failed to delete program: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("Failed to commit program delete: %w", err)
	}

	return affected > 0, nil
}

func (db Database) InsertTarget(target models.TargetCreate) (*models.Target, error) {
	res, err := db.connection.Exec(
		`INSERT INTO target (program_id, domain, ip_address, tech_stack, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		target.ProgramID,
		target.Domain,
		target.IPAddress,
		target.TechStack,
		target.Notes,
		db.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to insert target: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("Failed to get inserted target id: %w", err)
	}

	return db.GetTarget(id)
}

func (db Database) GetTarget(id int64) (*models.Target, error) {
	target, err := scanTarget(db.connection.QueryRow(`SELECT `+targetColumns+` FROM target WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("Failed to get target: %w", err)
	}

	return &target, nil
}

// GetTargets lists all targets, or only those of programID when it is not nil.
func (db Database) GetTargets(programID *int64) ([]models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM target`
	args := make([]any, 0)
	if programID != nil {
		query = fmt.Sprintf("%s WHERE program_id = ?", query)
		args = append(args, *programID)
	}
	query = fmt.Sprintf("%s ORDER BY created_at DESC, id DESC", query)

	rows, err := db.connection.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("Failed to get all targets: %w", err)
	}
	defer rows.Close()

	results := make([]models.Target, 0)
	for rows.Next() {
		item, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("Failed to scan target row: %w", err)
		}

		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Rows error when getting targets: %w", err)
	}

	return results, nil
}

// RemoveTarget deletes the target and its vulnerabilities.
func (db Database) RemoveTarget(id int64) (bool, error) {
	tx, err := db.connection.Begin()
	if err != nil {
		return false, fmt.Errorf("Failed to begin target delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vulnerability WHERE target_id = ?`, id); err != nil {
		return false, fmt.Errorf("Failed to delete target vulnerabilities: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM target WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("Failed to delete target: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Failed to delete target: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("Failed to commit target delete: %w", err)
	}

	return affected > 0, nil
}

func (db Database) InsertVulnerability(vuln models.VulnerabilityCreate) (*models.Vulnerability, error) {
	res, err := db.connection.Exec(
		`INSERT INTO vulnerability (target_id, title, severity, vulnerability_type, description, status, bounty_amount, reported_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vuln.TargetID,
		vuln.Title,
		vuln.Severity,
		vuln.VulnerabilityType,
		vuln.Description,
		vuln.Status,
		vuln.BountyAmount,
		formatOptionalTime(vuln.ReportedAt),
		db.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to insert vulnerability: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("Failed to get inserted vulnerability id: %w", err)
	}

	return db.GetVulnerability(id)
}

// UpdateVulnerability replaces every writable field. Returns nil if id does not exist.
func (db Database) UpdateVulnerability(id int64, vuln models.VulnerabilityCreate) (*models.Vulnerability, error) {
	res, err := db.connection.Exec(
		`UPDATE vulnerability SET target_id = ?, title = ?, severity = ?, vulnerability_type = ?, description = ?, status = ?, bounty_amount = ?, reported_at = ? WHERE id = ?`,
		vuln.TargetID,
		vuln.Title,
		vuln.Severity,
		vuln.VulnerabilityType,
		vuln.Description,
		vuln.Status,
		vuln.BountyAmount,
		formatOptionalTime(vuln.ReportedAt),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to update vulnerability: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("Failed to update vulnerability: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return db.GetVulnerability(id)
}

func (db Database) GetVulnerability(id int64) (*models.Vulnerability, error) {
	vuln, err := scanVulnerability(db.connection.QueryRow(`SELECT `+vulnerabilityColumns+` FROM vulnerability WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("Failed to get vulnerability: %w", err)
	}

	return &vuln, nil
}

// GetVulnerabilities lists all vulnerabilities, or only those of targetID when it is not nil.
func (db Database) GetVulnerabilities(targetID *int64) ([]models.Vulnerability, error) {
	query := `SELECT ` + vulnerabilityColumns + ` FROM vulnerability`
	args := make([]any, 0)
	if targetID != nil {
		query = fmt.Sprintf("%s WHERE target_id = ?", query)
		args = append(args, *targetID)
	}
	query = fmt.Sprintf("%s ORDER BY created_at DESC, id DESC", query)

	rows, err := db.connection.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("Failed to get all vulnerabilities: %w", err)
	}
	defer rows.Close()

	results := make([]models.Vulnerability, 0)
	for rows.Next() {
		item, err := scanVulnerability(rows)
		if err != nil {
			return nil, fmt.Errorf("Failed to scan vulnerability row: %w", err)
		}

		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Rows error when getting vulnerabilities: %w", err)
	}

	return results, nil
}

func (db Database) RemoveVulnerability(id int64) (bool, error) {
	res, err := db.connection.Exec(`DELETE FROM vulnerability WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("Failed to delete vulnerability: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Failed to delete vulnerability: %w", err)
	}

	return affected > 0, nil
}

func (db Database) GetStats() (models.Stats, error) {
	now := db.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var stats models.Stats
	var thisMonth int
	if err := db.connection.QueryRow(statsQuery, monthStart.Format(timestampLayout)).Scan(
		&stats.TotalPrograms,
		&stats.TotalTargets,
		&stats.TotalVulnerabilities,
		&stats.TotalBounties,
		&thisMonth,
	); err != nil {
		return models.Stats{}, fmt.Errorf("Failed to get stats: %w", err)
	}

	stats.VulnerabilitiesThisMonth = &thisMonth

	return stats, nil
}

func scanProgram(row rowScanner) (models.Program, error) {
	var program models.Program
	var scope sql.NullString
	var maxBounty sql.NullFloat64
	var status string
	var createdAt string

	if err := row.Scan(&program.ID, &program.Name, &program.Platform, &scope, &maxBounty, &status, &createdAt); err != nil {
		return models.Program{}, err
	}

	parsedCreatedAt, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return models.Program{}, fmt.Errorf("Failed to convert created_at to time: %s", createdAt)
	}

	program.Scope = nullString(scope)
	program.MaxBounty = nullFloat(maxBounty)
	program.Status = models.ProgramStatus(status)
	program.CreatedAt = parsedCreatedAt

	return program, nil
}

func scanTarget(row rowScanner) (models.Target, error) {
	var target models.Target
	var ipAddress, techStack, notes sql.NullString
	var createdAt string

	if err := row.Scan(&target.ID, &target.ProgramID, &target.Domain, &ipAddress, &techStack, &notes, &createdAt); err != nil {
		return models.Target{}, err
	}

	parsedCreatedAt, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return models.Target{}, fmt.Errorf("Failed to convert created_at to time: %s", createdAt)
	}

	target.IPAddress = nullString(ipAddress)
	target.TechStack = nullString(techStack)
	target.Notes = nullString(notes)
	target.CreatedAt = parsedCreatedAt

	return target, nil
}

func scanVulnerability(row rowScanner) (models.Vulnerability, error) {
	var vuln models.Vulnerability
	var description, reportedAt sql.NullString
	var bountyAmount sql.NullFloat64
	var severity, status, createdAt string

	if err := row.Scan(
		&vuln.ID,
		&vuln.TargetID,
		&vuln.Title,
		&severity,
		&vuln.VulnerabilityType,
		&description,
		&status,
		&bountyAmount,
		&reportedAt,
		&createdAt,
	); err != nil {
		return models.Vulnerability{}, err
	}

	parsedCreatedAt, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return models.Vulnerability{}, fmt.Errorf("Failed to convert created_at to time: %s", createdAt)
	}

	if reportedAt.Valid {
		parsedReportedAt, err := time.Parse(time.RFC3339, reportedAt.String)
		if err != nil {
			return models.Vulnerability{}, fmt.Errorf("Failed to convert reported_at to time: %s", reportedAt.String)
		}
		vuln.ReportedAt = &parsedReportedAt
	}

	vuln.Severity = models.Severity(severity)
	vuln.Status = models.VulnStatus(status)
	vuln.Description = nullString(description)
	vuln.BountyAmount = nullFloat(bountyAmount)
	vuln.CreatedAt = parsedCreatedAt

	return vuln, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
