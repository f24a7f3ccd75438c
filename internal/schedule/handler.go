package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(coach, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /coach/occurrences?from=&to=
	coach.GET("/coach/occurrences", h.ListOccurrences)

	// GET /admin/teams/:team_id/sessions
	admin.GET("/admin/teams/:team_id/sessions", h.ListTeamSessions)
}

type OccurrenceList struct {
	Items []Occurrence `json:"items"`
	Total int          `json:"total"`
}

// GET /coach/occurrences
// Without from/to this is the upcoming list (today onwards).
func (h *Handler) ListOccurrences(c *gin.Context) {
	staffID := auth.StaffID(c)
	fromStr, toStr := c.Query("from"), c.Query("to")

	var (
		items []Occurrence
		err   error
	)
	if fromStr == "" && toStr == "" {
		items, err = h.svc.UpcomingOccurrences(c.Request.Context(), staffID)
	} else {
		from, to, perr := h.parseRange(fromStr, toStr)
		if perr != nil {
			apierr.Respond(c, perr)
			return
		}
		items, err = h.svc.OccurrencesBetween(c.Request.Context(), staffID, from, to)
	}
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, OccurrenceList{Items: items, Total: len(items)})
}

func (h *Handler) ListTeamSessions(c *gin.Context) {
	defs, err := h.svc.SessionsByTeam(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": defs, "total": len(defs)})
}

// ---------- helpers ----------

func (h *Handler) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, apierr.Invalid("from and to must be given together")
	}
	loc := h.svc.Location()
	from, err := time.ParseInLocation(DateLayout, fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.Invalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, toStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.Invalid("to must be YYYY-MM-DD")
	}
	return from, to, nil
}
