package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the ledger routes. Every coach route first checks
// that the caller coaches the occurrence's team; writeMW runs after that, in
// front of the mark write only (the idempotency replay).
func RegisterRoutes(coach, admin gin.IRoutes, svc *Service, writeMW ...gin.HandlerFunc) {
	h := &Handler{svc: svc}

	// GET /coach/occurrences/:occurrence_id/attendance
	coach.GET("/coach/occurrences/:occurrence_id/attendance", h.occurrenceAccess, h.GetSheet)
	// GET /coach/occurrences/:occurrence_id/marks
	coach.GET("/coach/occurrences/:occurrence_id/marks", h.occurrenceAccess, h.ListMarks)
	// PUT /coach/occurrences/:occurrence_id/attendance/:student_id
	handlers := []gin.HandlerFunc{h.occurrenceAccess}
	handlers = append(handlers, writeMW...)
	handlers = append(handlers, h.SetMark)
	coach.PUT("/coach/occurrences/:occurrence_id/attendance/:student_id", handlers...)

	// GET /admin/attendance?team_id=&session_id=&student_id=&from=&to=&sort=&limit=&offset=
	admin.GET("/admin/attendance", h.AdminList)
	// GET /admin/attendance/stats?team_id=&from=&to=
	admin.GET("/admin/attendance/stats", h.AdminStats)
}

// ---------- handlers ----------

// occurrenceAccess lets admins through and otherwise requires the caller to
// coach the team behind :occurrence_id.
func (h *Handler) occurrenceAccess(c *gin.Context) {
	if auth.IsAdmin(c) {
		c.Next()
		return
	}
	if err := h.svc.Authorize(c.Request.Context(), c.Param("occurrence_id"), auth.StaffID(c)); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.Next()
}

func (h *Handler) GetSheet(c *gin.Context) {
	sheet, err := h.svc.Sheet(c.Request.Context(), c.Param("occurrence_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *Handler) ListMarks(c *gin.Context) {
	id := c.Param("occurrence_id")
	marks, err := h.svc.MarksForOccurrence(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	key, _ := parseOccurrence(id)
	c.JSON(http.StatusOK, MarksResponse{OccurrenceID: key, Items: marks})
}

func (h *Handler) SetMark(c *gin.Context) {
	var req SetMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "body must be {\"assisted\": bool}"))
		return
	}

	mark, created, err := h.svc.SetMark(c.Request.Context(), c.Param("occurrence_id"), c.Param("student_id"), *req.Assisted)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, SetMarkResponse{Mark: mark, Created: created})
}

// GET /admin/attendance
func (h *Handler) AdminList(c *gin.Context) {
	q := ListQuery{
		Filter: filterFromQuery(c),
		Sort:   c.Query("sort"),
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/attendance/stats
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ===== helpers =====

func filterFromQuery(c *gin.Context) Filter {
	return Filter{
		TeamID:    c.Query("team_id"),
		SessionID: c.Query("session_id"),
		StudentID: c.Query("student_id"),
		From:      c.Query("from"),
		To:        c.Query("to"),
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
