package store

// created_at is written by the store in timestampLayout so that text ordering matches time ordering
const createTablesQuery = `
CREATE TABLE IF NOT EXISTS program (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	platform TEXT NOT NULL,
	scope TEXT,
	max_bounty REAL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS target (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	program_id INTEGER NOT NULL,
	domain TEXT NOT NULL,
	ip_address TEXT,
	tech_stack TEXT,
	notes TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (program_id) REFERENCES program (id)
);
CREATE TABLE IF NOT EXISTS vulnerability (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	severity TEXT NOT NULL,
	vulnerability_type TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'draft',
	bounty_amount REAL,
	reported_at TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (target_id) REFERENCES target (id)
);
CREATE INDEX IF NOT EXISTS target_program_idx ON target (program_id);
CREATE INDEX IF NOT EXISTS vulnerability_target_idx ON vulnerability (target_id);
`

const programColumns = `id, name, platform, scope, max_bounty, status, created_at`

const targetColumns = `id, program_id, domain, ip_address, tech_stack, notes, created_at`

const vulnerabilityColumns = `id, target_id, title, severity, vulnerability_type, description, status, bounty_amount, reported_at, created_at`

const statsQuery = `
SELECT
	(SELECT COUNT(*) FROM program),
	(SELECT COUNT(*) FROM target),
	(SELECT COUNT(*) FROM vulnerability),
	(SELECT COALESCE(SUM(bounty_amount), 0) FROM vulnerability),
	(SELECT COUNT(*) FROM vulnerability WHERE created_at >= ?)`
