package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"issueapi/internal/apperr"
	"issueapi/internal/attachment"
	"issueapi/internal/audit"
	"issueapi/internal/metrics"
	"issueapi/internal/model"
	"issueapi/internal/notify"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
	"issueapi/internal/validation"
)

// DefaultCategories are always offered, whether or not any issue uses them yet.
var DefaultCategories = []string{"alumbrado", "limpieza", "baches", "ruido", "otros"}

// IssueListResult is the service-level DTO for paginated issues.
type IssueListResult struct {
	Items    []model.Issue `json:"data"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// IssueService sequences every issue mutation across the row, its attachment
// files and the audit trail. It is the only caller of the repository's write
// methods, and every call is checked against the actor's scope predicate.
type IssueService interface {
	// Create stores the attachments, inserts the row with status open and audits it.
	Create(ctx context.Context, actor model.Actor, cmd validation.CreateIssueCommand) (*model.Issue, error)

	// Get returns one issue if the actor may see it.
	Get(ctx context.Context, actor model.Actor, id string) (*model.Issue, error)

	// List returns one page of issues visible to the actor.
	List(ctx context.Context, actor model.Actor, q model.IssueQuery) (*IssueListResult, error)

	// Export streams every issue visible to the actor that matches q, ignoring pagination.
	Export(ctx context.Context, actor model.Actor, q model.IssueQuery, fn func(*model.Issue) error) error

	// Update applies a partial change. New files are stored before the row is
	// written and superseded files are removed only after it is committed.
	Update(ctx context.Context, actor model.Actor, id string, cmd validation.UpdateIssueCommand) (*model.Issue, error)

	// Delete removes the row, then every file it referenced.
	Delete(ctx context.Context, actor model.Actor, id string) error

	// History returns the audit trail of an issue, most recent first.
	History(ctx context.Context, actor model.Actor, id string) ([]model.AuditLogEntry, error)

	// Categories returns the default categories followed by any other stored ones.
	Categories(ctx context.Context, actor model.Actor) ([]string, error)
}

type issueService struct {
	repo    repository.IssueRepository
	files   *attachment.Store
	audit   *audit.Log
	notify  notify.Publisher
	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewIssueService constructs a new IssueService. pub, log and m may be nil.
func NewIssueService(repo repository.IssueRepository, files *attachment.Store, auditLog *audit.Log, pub notify.Publisher, log *zap.Logger, m *metrics.Metrics) IssueService {
	if pub == nil {
		pub = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &issueService{
		repo:    repo,
		files:   files,
		audit:   auditLog,
		notify:  pub,
		log:     log,
		metrics: m,
		tracer:  otel.Tracer("issueapi/service"),
	}
}

func (s *issueService) start(ctx context.Context, name string, actor model.Actor) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "IssueService."+name, trace.WithAttributes(
		attribute.String("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	))
}

// finish records err on span and counts the mutation outcome.
func (s *issueService) finish(span trace.Span, op string, err error) {
	if op != "" {
		s.metrics.Mutation(op, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	}
	span.End()
}

func (s *issueService) Create(ctx context.Context, actor model.Actor, cmd validation.CreateIssueCommand) (_ *model.Issue, err error) {
	ctx, span := s.start(ctx, "Create", actor)
	defer func() { s.finish(span, "create", err) }()

	pred := scope.For(actor)
	if pred.Kind == scope.None {
		return nil, apperr.Forbidden("authentication required")
	}

	stored, err := s.storeAll(ctx, cmd.Attachments)
	if err != nil {
		return nil, err
	}

	is := &model.Issue{
		Title:       cmd.Title,
		Category:    cmd.Category,
		Description: cmd.Description,
		Lat:         cmd.Lat,
		Lng:         cmd.Lng,
		Status:      model.StatusOpen,
		CreatedBy:   &actor.ID,
		MapID:       cmd.MapID,
	}
	for _, st := range stored {
		applyToIssue(is, st)
	}

	created, err := s.repo.Create(ctx, is)
	if err != nil {
		s.discard(ctx, stored)
		return nil, apperr.Storage("create issue", err)
	}
	span.SetAttributes(attribute.String("issue.id", created.ID))

	s.audit.Record(ctx, created.ID, actor.ID, audit.Change{Action: model.ActionCreate, New: &created.Title})
	s.notify.Publish(ctx, notify.Event{Type: notify.EventCreated, IssueID: created.ID, ActorID: actor.ID, Status: string(created.Status)})
	s.log.Info("issue_created", zap.String("issue_id", created.ID), zap.String("actor_id", actor.ID), zap.Int("attachments", len(stored)))
	return created, nil
}

func (s *issueService) Get(ctx context.Context, actor model.Actor, id string) (_ *model.Issue, err error) {
	ctx, span := s.start(ctx, "Get", actor)
	defer func() { s.finish(span, "", err) }()

	is, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.For(actor).CanRead(is) {
		return nil, apperr.Forbidden("not allowed to view this issue")
	}
	return is, nil
}

func (s *issueService) List(ctx context.Context, actor model.Actor, q model.IssueQuery) (_ *IssueListResult, err error) {
	ctx, span := s.start(ctx, "List", actor)
	defer func() { s.finish(span, "", err) }()

	res, err := s.repo.List(ctx, q, scope.For(actor))
	if err != nil {
		return nil, apperr.Storage("list issues", err)
	}
	return &IssueListResult{Items: res.Items, Total: res.Total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *issueService) Export(ctx context.Context, actor model.Actor, q model.IssueQuery, fn func(*model.Issue) error) (err error) {
	ctx, span := s.start(ctx, "Export", actor)
	defer func() { s.finish(span, "", err) }()

	if err := s.repo.Export(ctx, q, scope.For(actor), fn); err != nil {
		return apperr.Storage("export issues", err)
	}
	return nil
}

func (s *issueService) Update(ctx context.Context, actor model.Actor, id string, cmd validation.UpdateIssueCommand) (_ *model.Issue, err error) {
	ctx, span := s.start(ctx, "Update", actor)
	span.SetAttributes(attribute.String("issue.id", id))
	defer func() { s.finish(span, "update", err) }()

	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	pred := scope.For(actor)
	if !pred.CanWrite(before) {
		return nil, apperr.Forbidden("not allowed to modify this issue")
	}
	if (cmd.AssignedTo != nil || cmd.MapID != nil) && !pred.CanAssign() {
		return nil, apperr.Forbidden("only administrators can change assignment or map")
	}

	patch, changes := diffFields(before, cmd)

	// New files first: the row must never point at a file that does not exist.
	stored, err := s.storeAll(ctx, cmd.Attachments)
	if err != nil {
		return nil, err
	}
	var superseded []string
	for _, st := range stored {
		old := slotURL(before, st.Slot)
		if old != nil {
			superseded = append(superseded, *old)
		}
		applyToPatch(&patch, st)
		changes = append(changes, audit.Change{Action: st.Slot.AuditAction(), Old: old, New: ptr(st.URL)})
	}

	if patch.Empty() {
		return before, nil
	}

	after, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.discard(ctx, stored)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("issue not found")
		}
		return nil, apperr.Storage("update issue", err)
	}

	// Committed. Old files can go now; a failure here only leaks a file.
	s.files.DeleteAll(context.WithoutCancel(ctx), superseded)
	s.audit.RecordAll(ctx, id, actor.ID, changes)

	actions := make([]string, 0, len(changes))
	for _, c := range changes {
		actions = append(actions, string(c.Action))
	}
	s.notify.Publish(ctx, notify.Event{Type: notify.EventUpdated, IssueID: id, ActorID: actor.ID, Status: string(after.Status), Changes: actions})
	s.log.Info("issue_updated", zap.String("issue_id", id), zap.String("actor_id", actor.ID), zap.Strings("changes", actions))
	return after, nil
}

func (s *issueService) Delete(ctx context.Context, actor model.Actor, id string) (err error) {
	ctx, span := s.start(ctx, "Delete", actor)
	span.SetAttributes(attribute.String("issue.id", id))
	defer func() { s.finish(span, "delete", err) }()

	is, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !scope.For(actor).CanDelete(is) {
		return apperr.Forbidden("only the creator or an administrator can delete this issue")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("issue not found")
		}
		return apperr.Storage("delete issue", err)
	}

	s.files.DeleteAll(context.WithoutCancel(ctx), is.AttachmentURLs())
	s.notify.Publish(ctx, notify.Event{Type: notify.EventDeleted, IssueID: id, ActorID: actor.ID})
	s.log.Info("issue_deleted", zap.String("issue_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *issueService) History(ctx context.Context, actor model.Actor, id string) (_ []model.AuditLogEntry, err error) {
	ctx, span := s.start(ctx, "History", actor)
	defer func() { s.finish(span, "", err) }()

	is, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.For(actor).CanRead(is) {
		return nil, apperr.Forbidden("not allowed to view this issue")
	}
	entries, err := s.audit.History(ctx, id)
	if err != nil {
		return nil, apperr.Storage("read audit history", err)
	}
	return entries, nil
}

func (s *issueService) Categories(ctx context.Context, actor model.Actor) ([]string, error) {
	stored, err := s.repo.Categories(ctx, scope.For(actor))
	if err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	return mergeCategories(DefaultCategories, stored), nil
}

func (s *issueService) load(ctx context.Context, id string) (*model.Issue, error) {
	is, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("issue not found")
		}
		return nil, apperr.Storage("load issue", err)
	}
	return is, nil
}

// storeAll writes payloads in slot order. If one fails, the files already
// written for this request are removed again.
func (s *issueService) storeAll(ctx context.Context, files map[model.Slot]model.Payload) ([]attachment.Stored, error) {
	var stored []attachment.Stored
	for _, slot := range model.Slots {
		p, ok := files[slot]
		if !ok {
			continue
		}
		st, err := s.files.Store(ctx, slot, p)
		if err != nil {
			s.discard(ctx, stored)
			return nil, err
		}
		stored = append(stored, st)
	}
	return stored, nil
}

// discard removes files that were stored for a mutation that did not commit.
func (s *issueService) discard(ctx context.Context, stored []attachment.Stored) {
	for _, st := range stored {
		s.files.Delete(context.WithoutCancel(ctx), st.URL)
	}
}

// diffFields compares the text and reference fields of cmd with the current row.
// Unchanged values produce neither a patch column nor an audit entry.
func diffFields(before *model.Issue, cmd validation.UpdateIssueCommand) (repository.IssuePatch, []audit.Change) {
	var (
		p       repository.IssuePatch
		changes []audit.Change
	)
	if cmd.Status != nil && *cmd.Status != before.Status {
		p.Status = cmd.Status
		changes = append(changes, audit.Change{Action: model.ActionStatusChange, Old: ptr(string(before.Status)), New: ptr(string(*cmd.Status))})
	}
	if cmd.Description != nil && *cmd.Description != before.Description {
		p.Description = cmd.Description
		changes = append(changes, audit.Change{Action: model.ActionDescriptionChange, Old: ptr(before.Description), New: cmd.Description})
	}
	if cmd.Category != nil && *cmd.Category != before.Category {
		p.Category = cmd.Category
		changes = append(changes, audit.Change{Action: model.ActionCategoryChange, Old: ptr(before.Category), New: cmd.Category})
	}
	if cmd.AssignedTo != nil && *cmd.AssignedTo != deref(before.AssignedTo) {
		p.AssignedTo = &sql.NullString{String: *cmd.AssignedTo, Valid: *cmd.AssignedTo != ""}
		changes = append(changes, audit.Change{Action: model.ActionAssignmentChange, Old: before.AssignedTo, New: optional(*cmd.AssignedTo)})
	}
	if cmd.MapID != nil && *cmd.MapID != deref(before.MapID) {
		p.MapID = &sql.NullString{String: *cmd.MapID, Valid: *cmd.MapID != ""}
		changes = append(changes, audit.Change{Action: model.ActionMapChange, Old: before.MapID, New: optional(*cmd.MapID)})
	}
	return p, changes
}

func slotURL(is *model.Issue, slot model.Slot) *string {
	switch slot {
	case model.SlotPhoto:
		return is.PhotoURL
	case model.SlotDocument:
		return is.DocumentURL
	case model.SlotResolutionPhoto:
		return is.ResolutionPhotoURL
	case model.SlotResolutionDocument:
		return is.ResolutionDocumentURL
	}
	return nil
}

func applyToIssue(is *model.Issue, st attachment.Stored) {
	switch st.Slot {
	case model.SlotPhoto:
		is.PhotoURL, is.ThumbURL = ptr(st.URL), st.ThumbURL
	case model.SlotDocument:
		is.DocumentURL = ptr(st.URL)
	case model.SlotResolutionPhoto:
		is.ResolutionPhotoURL, is.ResolutionThumbURL = ptr(st.URL), st.ThumbURL
	case model.SlotResolutionDocument:
		is.ResolutionDocumentURL = ptr(st.URL)
	}
}

func applyToPatch(p *repository.IssuePatch, st attachment.Stored) {
	switch st.Slot {
	case model.SlotPhoto:
		p.PhotoURL, p.ThumbURL = ptr(st.URL), st.ThumbURL
	case model.SlotDocument:
		p.DocumentURL = ptr(st.URL)
	case model.SlotResolutionPhoto:
		p.ResolutionPhotoURL, p.ResolutionThumbURL = ptr(st.URL), st.ThumbURL
	case model.SlotResolutionDocument:
		p.ResolutionDocumentURL = ptr(st.URL)
	}
}

func mergeCategories(defaults, stored []string) []string {
	seen := make(map[string]bool, len(defaults)+len(stored))
	out := make([]string, 0, len(defaults)+len(stored))
	for _, c := range defaults {
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	var extra []string
	for _, c := range stored {
		k := strings.ToLower(strings.TrimSpace(c))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		extra = append(extra, c)
	}
	sort.Slice(extra, func(i, j int) bool { return strings.ToLower(extra[i]) < strings.ToLower(extra[j]) })
	return append(out, extra...)
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
