package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/coursehub/internal/authz"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	courseListCacheKey = "courses:list"
	courseNotFoundMsg  = "Course not found"
	storeTimeout       = 3 * time.Second
)

type CoursesStore interface {
	Create(ctx context.Context, c course.Course) (course.Course, error)
	GetByID(ctx context.Context, id int64) (course.Course, error)
	GetWithOwner(ctx context.Context, id int64) (course.WithOwner, error)
	List(ctx context.Context) ([]course.WithOwner, error)
	Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error
	Delete(ctx context.Context, id int64) error
}

// Identifier authenticates a request, writing the failure response itself.
type Identifier interface {
	Identify(c *gin.Context) (user.User, bool)
}

type CacheObserver interface {
	ObserveCache(result string)
}

type CoursesHandler struct {
	courses CoursesStore
	auth    Identifier
	cache   cache.Store
	metrics CacheObserver
	log     *slog.Logger
}

// cache and metrics may be nil.
func NewCoursesHandler(courses CoursesStore, auth Identifier, c cache.Store, metrics CacheObserver, log *slog.Logger) *CoursesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CoursesHandler{courses: courses, auth: auth, cache: c, metrics: metrics, log: log}
}

type courseList struct {
	Items []course.WithOwner `json:"items"`
	Count int                `json:"count"`
}

func (h *CoursesHandler) ListCourses(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	// the key is fixed before the store read, so a write that lands in
	// between bumps past it and this render is never served
	key, cacheable := h.listKey(cctx)

	if cacheable {
		if body, ok := h.cachedList(cctx, key); ok {
			RespondBytesWithETag(ctx, http.StatusOK, body)
			return
		}
	}

	items, err := h.courses.List(cctx)
	if err != nil {
		h.log.ErrorContext(cctx, "list courses failed", "err", err, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Could not list courses")
		return
	}

	if items == nil {
		items = []course.WithOwner{}
	}

	body, err := json.Marshal(courseList{Items: items, Count: len(items)})
	if err != nil {
		RespondInternal(ctx, "Could not list courses")
		return
	}

	if cacheable {
		if err := h.cache.Set(cctx, key, body); err != nil {
			h.log.WarnContext(cctx, "course list cache set failed", "err", err)
		}
	}

	RespondBytesWithETag(ctx, http.StatusOK, body)
}

func (h *CoursesHandler) GetCourse(ctx *gin.Context) {
	id, ok := courseIDParam(ctx)
	if !ok {
		RespondNotFound(ctx, courseNotFoundMsg)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	c, err := h.courses.GetWithOwner(cctx, id)
	if err != nil {
		h.respondStoreErr(ctx, err, "Could not fetch course")
		return
	}

	body, err := json.Marshal(c)
	if err != nil {
		RespondInternal(ctx, "Could not fetch course")
		return
	}

	RespondBytesWithETag(ctx, http.StatusOK, body)
}

func (h *CoursesHandler) CreateCourse(ctx *gin.Context) {
	var req course.CreateCourseRequest

	if !BindAndValidate(ctx, &req) {
		return
	}

	identity, ok := h.auth.Identify(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	created, err := h.courses.Create(cctx, course.NewFromCreateRequest(req, identity.ID))
	if err != nil {
		h.log.ErrorContext(cctx, "create course failed", "err", err, "user_id", identity.ID, "request_id", requestIDFrom(ctx))
		RespondInternal(ctx, "Could not create course")
		return
	}

	h.invalidateList(cctx)

	ctx.Header("Location", "/api/courses/"+strconv.FormatInt(created.ID, 10))
	ctx.Status(http.StatusCreated)
}

func (h *CoursesHandler) UpdateCourse(ctx *gin.Context) {
	var req course.UpdateCourseRequest

	if !BindAndValidate(ctx, &req) {
		return
	}

	identity, ok := h.auth.Identify(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	id, ok := h.loadOwned(ctx, cctx, identity)
	if !ok {
		return
	}

	if err := h.courses.Update(cctx, id, req); err != nil {
		h.respondStoreErr(ctx, err, "Could not update course")
		return
	}

	h.invalidateList(cctx)

	ctx.Status(http.StatusNoContent)
}

func (h *CoursesHandler) DeleteCourse(ctx *gin.Context) {
	identity, ok := h.auth.Identify(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	id, ok := h.loadOwned(ctx, cctx, identity)
	if !ok {
		return
	}

	if err := h.courses.Delete(cctx, id); err != nil {
		h.respondStoreErr(ctx, err, "Could not delete course")
		return
	}

	h.invalidateList(cctx)

	ctx.Status(http.StatusNoContent)
}

// loadOwned resolves :id to a course the identity owns, writing 404 or 403 otherwise.
func (h *CoursesHandler) loadOwned(ctx *gin.Context, cctx context.Context, identity user.User) (int64, bool) {
	id, ok := courseIDParam(ctx)
	if !ok {
		RespondNotFound(ctx, courseNotFoundMsg)
		return 0, false
	}

	c, err := h.courses.GetByID(cctx, id)
	if err != nil {
		h.respondStoreErr(ctx, err, "Could not fetch course")
		return 0, false
	}

	if authz.Authorize(identity, c) != authz.Permit {
		h.log.WarnContext(cctx, "course access denied",
			"course_id", c.ID,
			"owner_id", c.OwnerID,
			"user_id", identity.ID,
			"request_id", requestIDFrom(ctx),
		)
		RespondForbidden(ctx)
		return 0, false
	}

	return id, true
}

func (h *CoursesHandler) respondStoreErr(ctx *gin.Context, err error, msg string) {
	if errors.Is(err, course.ErrNotFound) {
		RespondNotFound(ctx, courseNotFoundMsg)
		return
	}

	h.log.ErrorContext(ctx.Request.Context(), "course store failed", "err", err, "request_id", requestIDFrom(ctx))
	RespondInternal(ctx, msg)
}

func (h *CoursesHandler) listKey(ctx context.Context) (string, bool) {
	if h.cache == nil {
		return "", false
	}

	gen, err := h.cache.Generation(ctx, courseListCacheKey)
	if err != nil {
		h.log.WarnContext(ctx, "course list generation read failed", "err", err)
		h.observeCache("error")
		return "", false
	}

	return listKeyFor(gen), true
}

func listKeyFor(gen int64) string {
	return courseListCacheKey + ":" + strconv.FormatInt(gen, 10)
}

func (h *CoursesHandler) cachedList(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := h.cache.Get(ctx, key)

	switch {
	case err != nil:
		h.log.WarnContext(ctx, "course list cache get failed", "err", err)
		h.observeCache("error")
		return nil, false
	case !ok:
		h.observeCache("miss")
		return nil, false
	}

	h.observeCache("hit")
	return body, true
}

// invalidateList runs after the store write has committed.
func (h *CoursesHandler) invalidateList(ctx context.Context) {
	if h.cache == nil {
		return
	}

	gen, err := h.cache.Bump(ctx, courseListCacheKey)
	if err != nil {
		h.log.WarnContext(ctx, "course list cache invalidate failed", "err", err)
		return
	}

	// the previous entry can no longer be looked up; drop it early
	if err := h.cache.Delete(ctx, listKeyFor(gen-1)); err != nil {
		h.log.WarnContext(ctx, "course list cache delete failed", "err", err)
	}
}

func (h *CoursesHandler) observeCache(result string) {
	if h.metrics != nil {
		h.metrics.ObserveCache(result)
	}
}

func courseIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
