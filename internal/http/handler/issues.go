package handler

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"issueapi/internal/export"
	"issueapi/internal/http/middleware"
	"issueapi/internal/model"
	"issueapi/internal/service"
	"issueapi/internal/validation"
)

func listParams(c *fiber.Ctx) validation.ListParams {
	return validation.ListParams{
		Page:     c.Query("page"),
		PageSize: c.Query("pageSize"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Q:        c.Query("q"),
		Order:    c.Query("order"),
		Sort:     c.Query("sort"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}
}

// issueID validates the :id parameter. ok is false once the error response
// has been written.
func issueID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// ListIssues godoc
// @Summary      List issues
// @Description  Filtered, sorted and paginated issues visible to the caller.
// @Tags         issues
// @Produce      json
// @Param        page      query  int     false  "1-indexed page"
// @Param        pageSize  query  int     false  "page size (1-100)"
// @Param        status    query  string  false  "open, in_progress or resolved"
// @Param        category  query  string  false  "exact category"
// @Param        q         query  string  false  "text search"
// @Param        order     query  string  false  "new, old, cat or status"
// @Param        from      query  string  false  "YYYY-MM-DD, inclusive"
// @Param        to        query  string  false  "YYYY-MM-DD, inclusive"
// @Success      200  {object}  service.IssueListResult
// @Failure      400  {object}  errorPayload
// @Security     BearerAuth
// @Router       /v1/issues [get]
func ListIssues(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := validation.ParseListQuery(listParams(c))
		if err != nil {
			return writeAppError(c, log, err)
		}
		res, err := svc.List(c.UserContext(), middleware.ActorFrom(c), q)
		if err != nil {
			return writeAppError(c, log, err)
		}
		return c.JSON(res)
	}
}

// ExportIssues godoc
// @Summary      Export issues as CSV
// @Description  Same filters and order as the list endpoint, without pagination.
// @Tags         issues
// @Produce      text/csv
// @Success      200  {string}  string
// @Security     BearerAuth
// @Router       /v1/issues/export [get]
func ExportIssues(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := validation.ParseListQuery(listParams(c))
		if err != nil {
			return writeAppError(c, log, err)
		}

		var buf bytes.Buffer
		w, err := export.NewCSV(&buf)
		if err != nil {
			return writeAppError(c, log, err)
		}
		if err := svc.Export(c.UserContext(), middleware.ActorFrom(c), q, w.Write); err != nil {
			return writeAppError(c, log, err)
		}
		if err := w.Flush(); err != nil {
			return writeAppError(c, log, err)
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(time.Now())+`"`)
		return c.Send(buf.Bytes())
	}
}

// ListCategories godoc
// @Summary      List categories
// @Tags         issues
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Security     BearerAuth
// @Router       /v1/issues/categories [get]
func ListCategories(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.Categories(c.UserContext(), middleware.ActorFrom(c))
		if err != nil {
			return writeAppError(c, log, err)
		}
		return c.JSON(fiber.Map{"data": cats})
	}
}

// GetIssue godoc
// @Summary      Get an issue
// @Tags         issues
// @Produce      json
// @Param        id   path  string  true  "issue id"
// @Success      200  {object}  model.Issue
// @Failure      403  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Security     BearerAuth
// @Router       /v1/issues/{id} [get]
func GetIssue(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := issueID(c)
		if !ok {
			return nil
		}
		is, err := svc.Get(c.UserContext(), middleware.ActorFrom(c), id)
		if err != nil {
			return writeAppError(c, log, err)
		}
		return c.JSON(is)
	}
}

// IssueHistory godoc
// @Summary      Audit trail of an issue
// @Tags         issues
// @Produce      json
// @Param        id   path  string  true  "issue id"
// @Success      200  {object}  map[string][]model.AuditLogEntry
// @Security     BearerAuth
// @Router       /v1/issues/{id}/logs [get]
func IssueHistory(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := issueID(c)
		if !ok {
			return nil
		}
		entries, err := svc.History(c.UserContext(), middleware.ActorFrom(c), id)
		if err != nil {
			return writeAppError(c, log, err)
		}
		if entries == nil {
			entries = []model.AuditLogEntry{}
		}
		return c.JSON(fiber.Map{"data": entries})
	}
}

// CreateIssue godoc
// @Summary      Report an issue
// @Tags         issues
// @Accept       multipart/form-data
// @Produce      json
// @Param        title        formData  string  true   "title"
// @Param        category     formData  string  true   "category"
// @Param        description  formData  string  false  "description"
// @Param        lat          formData  string  true   "latitude, dot or comma decimal"
// @Param        lng          formData  string  true   "longitude, dot or comma decimal"
// @Param        photo        formData  file    false  "jpeg, png, webp or gif"
// @Param        document     formData  file    false  "pdf, text or markdown"
// @Success      201  {object}  model.Issue
// @Failure      400  {object}  errorPayload
// @Security     BearerAuth
// @Router       /v1/issues [post]
func CreateIssue(svc service.IssueService, maxBytes int64, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, files, err := decodeIssueForm(c, maxBytes)
		if err != nil {
			return writeAppError(c, log, err)
		}
		cmd, err := validation.ParseCreate(form, files)
		if err != nil {
			return writeAppError(c, log, err)
		}
		is, err := svc.Create(c.UserContext(), middleware.ActorFrom(c), cmd)
		if err != nil {
			return writeAppError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(is)
	}
}

// UpdateIssue godoc
// @Summary      Update an issue
// @Description  Partial update. Absent fields are untouched; an empty assigned_to or map_id clears it.
// @Tags         issues
// @Accept       multipart/form-data
// @Produce      json
// @Param        id                   path      string  true   "issue id"
// @Param        status               formData  string  false  "open, in_progress or resolved"
// @Param        description          formData  string  false  "description"
// @Param        category             formData  string  false  "category"
// @Param        assigned_to          formData  string  false  "user id (admin only)"
// @Param        map_id               formData  string  false  "map id (admin only)"
// @Param        photo                formData  file    false  "replacement photo"
// @Param        document             formData  file    false  "replacement document"
// @Param        resolution_photo     formData  file    false  "resolution photo"
// @Param        resolution_document  formData  file    false  "resolution document"
// @Success      200  {object}  model.Issue
// @Failure      400  {object}  errorPayload
// @Failure      403  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Security     BearerAuth
// @Router       /v1/issues/{id} [patch]
func UpdateIssue(svc service.IssueService, maxBytes int64, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := issueID(c)
		if !ok {
			return nil
		}
		form, files, err := decodeIssueForm(c, maxBytes)
		if err != nil {
			return writeAppError(c, log, err)
		}
		cmd, err := validation.ParseUpdate(form, files)
		if err != nil {
			return writeAppError(c, log, err)
		}
		is, err := svc.Update(c.UserContext(), middleware.ActorFrom(c), id, cmd)
		if err != nil {
			return writeAppError(c, log, err)
		}
		return c.JSON(is)
	}
}

// DeleteIssue godoc
// @Summary      Delete an issue
// @Tags         issues
// @Param        id   path  string  true  "issue id"
// @Success      204
// @Failure      403  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Security     BearerAuth
// @Router       /v1/issues/{id} [delete]
func DeleteIssue(svc service.IssueService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := issueID(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
			return writeAppError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
