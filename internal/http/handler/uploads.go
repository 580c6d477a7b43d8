package handler

import (
	"errors"
	"fmt"
	"mime"
	"path"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"issueapi/internal/attachment"
	"issueapi/internal/storage"
)

// ServeUpload streams a stored attachment or thumbnail. Names are
// server-generated and unguessable, so the route sits outside Auth the way
// the upload directory was served statically before.
func ServeUpload(files *attachment.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		rc, info, err := files.Open(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			logInternal(c, log, err)
			return writeError(c, fiber.StatusInternalServerError, "STORAGE_ERROR", "internal server error")
		}

		ct := info.ContentType
		if ct == "" {
			ct = mime.TypeByExtension(path.Ext(key))
		}
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, path.Base(key)))
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		return c.SendStream(rc, size)
	}
}
