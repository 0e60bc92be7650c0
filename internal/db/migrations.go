package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'student_status') THEN
			CREATE TYPE student_status AS ENUM ('Active', 'Completed', 'Alumni');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'client_source') THEN
			CREATE TYPE client_source AS ENUM ('Direct', 'Insurance', 'Corporate Fleet');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'account_type') THEN
			CREATE TYPE account_type AS ENUM ('Individual', 'B2B', 'Partner');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS staff (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		status student_status NOT NULL DEFAULT 'Active',
		placement_start TIMESTAMPTZ,
		placement_end TIMESTAMPTZ,
		supervisor TEXT,
		department TEXT,
		skills TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		source client_source NOT NULL DEFAULT 'Direct',
		account_type account_type NOT NULL DEFAULT 'Individual',
		insurer_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		student_id UUID REFERENCES students(id),
		title TEXT NOT NULL,
		file_name TEXT NOT NULL,
		mime_type VARCHAR(128) NOT NULL,
		category VARCHAR(64) NOT NULL,
		content BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS certificates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		student_id UUID NOT NULL REFERENCES students(id),
		document_id UUID NOT NULL REFERENCES documents(id),
		type VARCHAR(32) NOT NULL,
		title TEXT NOT NULL,
		issuer_name TEXT NOT NULL,
		issuer_role TEXT NOT NULL DEFAULT '',
		issued_date DATE NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS hr_notes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		author_id UUID NOT NULL REFERENCES staff(id),
		content TEXT NOT NULL,
		priority VARCHAR(32) NOT NULL DEFAULT '',
		category VARCHAR(64) NOT NULL DEFAULT '',
		target_audience VARCHAR(64) NOT NULL DEFAULT '',
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		pinned_until TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_students_status_placement_end ON students (status, placement_end);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_certificates_student_completion ON certificates (student_id) WHERE type = 'Completion';`,
	`CREATE INDEX IF NOT EXISTS idx_certificates_issued_date ON certificates (issued_date);`,
	`CREATE INDEX IF NOT EXISTS idx_hr_notes_pinned_until ON hr_notes (pinned_until) WHERE is_pinned;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
