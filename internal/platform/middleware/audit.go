package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rxintake/rxintake/internal/platform/auth"
)

// AuditEntry captures who accessed which patient-data endpoint, when, from
// where, and the action type.
type AuditEntry struct {
	UserID    string
	Action    string // read, create, update, delete
	Path      string
	Method    string
	IPAddress string
	RequestID string
	Status    int
	Timestamp time.Time
}

// AuditRecorder persists audit entries. Tests can provide a mock; when no
// recorder is supplied the middleware falls back to structured logging.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns middleware that logs access to /api/v1/* endpoints. Care plan
// submissions carry patient identifiers, so every access is recorded with the
// authenticated user.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			err := next(c)

			rid, _ := c.Get("request_id").(string)
			entry := AuditEntry{
				UserID:    auth.UserIDFromContext(req.Context()),
				Action:    actionForMethod(req.Method),
				Path:      req.URL.Path,
				Method:    req.Method,
				IPAddress: c.RealIP(),
				RequestID: rid,
				Status:    c.Response().Status,
				Timestamp: time.Now().UTC(),
			}

			if len(recorders) > 0 {
				for _, r := range recorders {
					if recErr := r.RecordAccess(entry); recErr != nil {
						logger.Error().Err(recErr).Msg("audit record failed")
					}
				}
			} else {
				logger.Info().
					Str("user_id", entry.UserID).
					Str("action", entry.Action).
					Str("path", entry.Path).
					Int("status", entry.Status).
					Str("remote_ip", entry.IPAddress).
					Str("request_id", entry.RequestID).
					Msg("audit")
			}

			return err
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "read"
	}
}
