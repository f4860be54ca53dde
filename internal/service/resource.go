package service

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/tracker/internal/auth"
	"github.com/mmynk/tracker/internal/middleware"
	"github.com/mmynk/tracker/internal/storage"
)

// Resource serves owner-scoped CRUD for one record type. Every query is
// filtered to the authenticated caller, and the caller becomes the owner of
// created rows. Rows of other users are reported as not found.
type Resource[T any] struct {
	name       string
	repo       storage.Owned[T]
	newRecord  func() *T
	newPayload func() Payload[T]
	logger     *slog.Logger
}

// NewResource creates a Resource. newRecord returns a record carrying the
// type's defaults; payload fields are applied on top of it on create.
func NewResource[T any](name string, repo storage.Owned[T], newRecord func() *T, newPayload func() Payload[T], logger *slog.Logger) *Resource[T] {
	return &Resource[T]{
		name:       name,
		repo:       repo,
		newRecord:  newRecord,
		newPayload: newPayload,
		logger:     logger,
	}
}

// Register mounts the collection at path and the items at path/:id.
func (r *Resource[T]) Register(g gin.IRoutes, path string) {
	g.GET(path+"/", r.List)
	g.POST(path+"/", r.Create)
	g.GET(path+"/:id/", r.Retrieve)
	g.PUT(path+"/:id/", r.Update)
	g.PATCH(path+"/:id/", r.PartialUpdate)
	g.DELETE(path+"/:id/", r.Delete)
}

// owner returns the authenticated user ID or writes a 401.
func owner(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c.Request.Context())
	if userID == "" {
		middleware.Reject(c, auth.ErrMissingToken)
		return "", false
	}
	return userID, true
}

// List returns the caller's rows, optionally bounded by ?from= and ?to=.
func (r *Resource[T]) List(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	rows, err := r.repo.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, err)
		return
	}

	r.logger.Debug("List "+r.name, "user_id", userID, "count", len(rows))
	c.JSON(http.StatusOK, rows)
}

func (r *Resource[T]) Retrieve(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}

	v, err := r.repo.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (r *Resource[T]) Create(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}

	p := r.newPayload()
	if !bindJSON(c, p) {
		return
	}
	if missing := p.Missing(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, required(missing...))
		return
	}

	v := r.newRecord()
	p.Apply(v)
	if fe := p.Validate(v); len(fe) > 0 {
		c.JSON(http.StatusBadRequest, fe)
		return
	}

	if err := r.repo.Create(c.Request.Context(), userID, v); err != nil {
		fail(c, err)
		return
	}

	r.logger.Info("Created "+r.name, "user_id", userID)
	c.JSON(http.StatusCreated, v)
}

// Update replaces the row; every required field must be present.
func (r *Resource[T]) Update(c *gin.Context) {
	r.update(c, false)
}

// PartialUpdate changes only the fields present in the body.
func (r *Resource[T]) PartialUpdate(c *gin.Context) {
	r.update(c, true)
}

func (r *Resource[T]) update(c *gin.Context, partial bool) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")

	// Look the row up first so another user's ID yields 404, not 400.
	v, err := r.repo.Get(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}

	p := r.newPayload()
	if !bindJSON(c, p) {
		return
	}
	if !partial {
		if missing := p.Missing(); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, required(missing...))
			return
		}
	}

	p.Apply(v)
	if fe := p.Validate(v); len(fe) > 0 {
		c.JSON(http.StatusBadRequest, fe)
		return
	}

	if err := r.repo.Update(c.Request.Context(), userID, v); err != nil {
		fail(c, err)
		return
	}

	r.logger.Info("Updated "+r.name, "id", id, "user_id", userID, "partial", partial)
	c.JSON(http.StatusOK, v)
}

func (r *Resource[T]) Delete(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := r.repo.Delete(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}

	r.logger.Info("Deleted "+r.name, "id", id, "user_id", userID)
	c.Status(http.StatusNoContent)
}

// parseListFilter reads ?from= and ?to=. Date-only values cover the whole
// day: from starts at 00:00 and to ends at 23:59:59.999999 UTC.
func parseListFilter(c *gin.Context) (storage.ListFilter, bool) {
	var filter storage.ListFilter
	fe := FieldErrors{}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, _, err := parseDateValue(raw)
		if err != nil {
			fe.Add("from", "Invalid date.")
		} else {
			filter.From = &from
		}
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, dateOnly, err := parseDateValue(raw)
		if err != nil {
			fe.Add("to", "Invalid date.")
		} else {
			if dateOnly {
				to = to.Add(24*time.Hour - time.Microsecond)
			}
			filter.To = &to
		}
	}

	if len(fe) > 0 {
		c.JSON(http.StatusBadRequest, fe)
		return storage.ListFilter{}, false
	}
	return filter, true
}

func parseDateValue(raw string) (time.Time, bool, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), false, nil
	}
	if parsed, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return parsed.UTC(), false, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed.UTC(), true, nil
}
