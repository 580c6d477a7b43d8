package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinel is the object created by the last step. Its presence means every
// earlier step has completed.
const sentinel = "public.idx_issue_audit_logs_issue"

// users and maps are owned by the account and map services; only the columns
// this service reads are declared here.
var steps = []migrationStep{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  username   TEXT        NOT NULL UNIQUE,
  role       TEXT        NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_maps",
		SQL: `CREATE TABLE IF NOT EXISTS maps (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_issues",
		SQL: `CREATE TABLE IF NOT EXISTS issues (
  id                      UUID             PRIMARY KEY DEFAULT gen_random_uuid(),
  title                   TEXT             NOT NULL,
  category                TEXT             NOT NULL,
  description             TEXT             NOT NULL DEFAULT '',
  lat                     DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
  lng                     DOUBLE PRECISION NOT NULL CHECK (lng BETWEEN -180 AND 180),
  status                  TEXT             NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'resolved')),
  created_at              TIMESTAMPTZ      NOT NULL DEFAULT now(),
  created_by              UUID             REFERENCES users (id) ON DELETE SET NULL,
  assigned_to             UUID             REFERENCES users (id) ON DELETE SET NULL,
  map_id                  UUID             REFERENCES maps (id) ON DELETE SET NULL,
  photo_url               TEXT,
  thumb_url               TEXT,
  document_url            TEXT,
  resolution_photo_url    TEXT,
  resolution_thumb_url    TEXT,
  resolution_document_url TEXT,
  CHECK (thumb_url IS NULL OR photo_url IS NOT NULL),
  CHECK (resolution_thumb_url IS NULL OR resolution_photo_url IS NOT NULL)
);`,
	},
	{
		Name: "create_index_issues_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_issues_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issues_status ON issues (status);`,
	},
	{
		Name: "create_index_issues_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issues_category ON issues (LOWER(category));`,
	},
	{
		Name: "create_index_issues_created_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issues_created_by ON issues (created_by);`,
	},
	{
		Name: "create_index_issues_assigned_to",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issues_assigned_to ON issues (assigned_to);`,
	},
	{
		Name: "create_table_issue_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS issue_audit_logs (
  id         BIGSERIAL   PRIMARY KEY,
  issue_id   UUID        NOT NULL REFERENCES issues (id) ON DELETE CASCADE,
  actor_id   UUID        REFERENCES users (id) ON DELETE SET NULL,
  action     TEXT        NOT NULL,
  old_value  TEXT,
  new_value  TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_issue_audit_logs_issue",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_issue_audit_logs_issue ON issue_audit_logs (issue_id, created_at DESC, id DESC);`,
	},
}

// EnsureMigrated applies the schema unless the sentinel index already exists.
// Every step is idempotent and the sentinel is created last, so a run
// interrupted half-way is completed by the next one.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	start := time.Now()

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinel).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// StepNames lists the migration steps in execution order.
func StepNames() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}
