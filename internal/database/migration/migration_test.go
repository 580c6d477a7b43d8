package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const sentinelQuery = "SELECT to_regclass($1) IS NOT NULL"

func bufferLogger(buf *bytes.Buffer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(buf), zap.DebugLevel)
	return zap.New(core)
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    string
		wantLog    string
	}{
		{
			name: "schema present",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WithArgs(sentinel).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantLog: "db_migration_skip",
		},
		{
			name: "fresh database runs every step",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WithArgs(sentinel).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				for _, s := range steps {
					mock.ExpectExec(regexp.QuoteMeta(s.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
				}
			},
			wantLog: "db_migration_success",
		},
		{
			// issues exists but the run stopped before the audit table.
			name: "partial schema is completed",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WithArgs("public.idx_issue_audit_logs_issue").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				for _, s := range steps {
					mock.ExpectExec(regexp.QuoteMeta(s.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
				}
			},
			wantLog: "db_migration_success",
		},
		{
			name: "sentinel check fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WillReturnError(errors.New("permission denied"))
			},
			wantErr: "failed to check sentinel: permission denied",
			wantLog: "db_migration_failed",
		},
		{
			name: "step fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("syntax error"))
			},
			wantErr: "migration step create_table_users failed: syntax error",
			wantLog: `"migration_step":"create_table_users"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMocks(mock)

			var buf bytes.Buffer
			err = EnsureMigrated(ctx, db, bufferLogger(&buf), "db.internal")
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), `"db_host":"db.internal"`)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStepNames(t *testing.T) {
	names := StepNames()
	require.Len(t, names, len(steps))
	assert.Equal(t, "create_extension_pgcrypto", names[0])
	assert.Contains(t, names, "create_table_issue_audit_logs")
}

func TestSentinelIsCreatedLast(t *testing.T) {
	last := steps[len(steps)-1]
	assert.Contains(t, last.SQL, strings.TrimPrefix(sentinel, "public."))
	for _, s := range steps {
		assert.Contains(t, s.SQL, "IF NOT EXISTS", "step %s must be idempotent", s.Name)
	}
}
