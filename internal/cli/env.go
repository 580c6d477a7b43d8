package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"issueapi/internal/attachment"
	"issueapi/internal/audit"
	"issueapi/internal/config"
	"issueapi/internal/database"
	"issueapi/internal/logger"
	"issueapi/internal/model"
	"issueapi/internal/notify"
	"issueapi/internal/repository"
	"issueapi/internal/repository/postgres"
	"issueapi/internal/service"
	"issueapi/internal/storage"
)

// operator is the identity commands act as. It sees every issue.
var operator = model.Actor{ID: "issuectl", Role: model.RoleAdmin}

type env struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	db     *sql.DB
	issues repository.IssueRepository
	files  *attachment.Store
	svc    service.IssueService
}

func newLogger(cfg *config.AppConfig, opts *RootOptions, w io.Writer) *zap.Logger {
	lc := cfg.Log
	lc.File = ""
	if opts.Verbose {
		lc.Level = "debug"
	}
	return logger.NewWithWriter(lc, time.UTC, w)
}

// openDB connects to the configured database.
func openDB(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// openEnv wires the database, storage and service the way the API server does,
// without notifications.
func openEnv(ctx context.Context, opts *RootOptions, stderr io.Writer) (*env, error) {
	cfg := config.Load()
	log := newLogger(cfg, opts, stderr)

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	st, err := storage.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	issues := postgres.NewIssuePostgres(db)
	files := attachment.NewStore(st, cfg.Storage, log, nil)
	auditLog := audit.New(postgres.NewAuditPostgres(db), log, nil)
	return &env{
		cfg:    cfg,
		log:    log,
		db:     db,
		issues: issues,
		files:  files,
		svc:    service.NewIssueService(issues, files, auditLog, notify.Noop{}, log, nil),
	}, nil
}

func (e *env) Close() {
	_ = e.log.Sync()
	_ = e.db.Close()
}
