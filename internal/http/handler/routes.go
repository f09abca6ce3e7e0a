package handler

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"mediapi/internal/repository"
	"mediapi/internal/service"
	"mediapi/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; mutating content routes are gated by
// the bearer-token guard.
func RegisterRoutes(app *fiber.App, db *sql.DB, contentSvc service.ContentService, authSvc service.AuthService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	v1 := app.Group("/api/v1")
	v1.Post("/token", Login(authSvc))

	v1.Get("/contents", SearchContents(contentSvc))
	v1.Get("/contents/:name", GetContent(contentSvc))

	guard := RequireAuth(authSvc)
	v1.Post("/contents", guard, UploadContent(contentSvc))
	v1.Patch("/contents/:name", guard, UpdateContentKeywords(contentSvc))
	v1.Delete("/contents/:name", guard, DeleteContent(contentSvc))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Login exchanges form credentials for a bearer token.
func Login(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.FormValue("username")
		password := c.FormValue("password")
		if username == "" || password == "" {
			return writeError(c, fiber.StatusBadRequest, "CREDENTIALS_REQUIRED", "username and password are required")
		}

		token, err := authSvc.Login(c.UserContext(), username, password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect username or password")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"access_token": token, "token_type": "bearer"})
	}
}

// RequireAuth guards a route behind bearer-token verification.
func RequireAuth(authSvc service.AuthService) fiber.Handler {
	const prefix = "Bearer "
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}
		subject, err := authSvc.Verify(auth[len(prefix):])
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
		}
		c.Locals("username", subject)
		return c.Next()
	}
}

// GetContent serves a content's bytes by name. The access counter is
// incremented unless ?count=false; the increment runs after the response.
func GetContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		count := c.QueryBool("count", true)

		content, f, err := svc.Fetch(c.UserContext(), name, count)
		if err != nil {
			// An inconsistent row/file pair is an operator problem, not a
			// client one; externally it is just not found.
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInconsistentState) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "content "+name+" not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, storage.TypeByExtension(filepath.Ext(content.Name)))
		return c.SendStream(f)
	}
}

// UploadContent accepts a multipart file plus a delimited keyword string and
// creates a content entity.
func UploadContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		content, err := svc.Upload(c.UserContext(), f, c.FormValue("keywords"))
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUnsupportedMediaType):
				return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "the media type is not supported")
			case errors.Is(err, service.ErrEmptyKeywords):
				return writeError(c, fiber.StatusBadRequest, "EMPTY_KEYWORDS", "at least one keyword is required")
			case errors.Is(err, repository.ErrConflict):
				return writeError(c, fiber.StatusConflict, "CONFLICT", "a concurrent write conflicted, retry the request")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(content)
	}
}

// SearchContents returns contents matching any of the repeated keyword query
// parameters, ranked by match count.
func SearchContents(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var keywords []string
		for _, v := range c.Context().QueryArgs().PeekMulti("keyword") {
			keywords = append(keywords, string(v))
		}
		if len(keywords) == 0 {
			return writeError(c, fiber.StatusBadRequest, "KEYWORD_REQUIRED", "at least one keyword parameter is required")
		}

		items, err := svc.Search(c.UserContext(), keywords)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(items)
	}
}

type updateKeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

// UpdateContentKeywords replaces a content's keyword set.
func UpdateContentKeywords(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateKeywordsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		content, err := svc.UpdateKeywords(c.UserContext(), c.Params("name"), req.Keywords)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyKeywords):
				return writeError(c, fiber.StatusUnprocessableEntity, "EMPTY_KEYWORDS", "an entity must have at least one keyword")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "content "+c.Params("name")+" not found")
			case errors.Is(err, repository.ErrConflict):
				return writeError(c, fiber.StatusConflict, "CONFLICT", "a concurrent write conflicted, retry the request")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(content)
	}
}

// DeleteContent removes a content entity and its stored file.
func DeleteContent(svc service.ContentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if err := svc.Delete(c.UserContext(), name); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "content "+name+" not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
