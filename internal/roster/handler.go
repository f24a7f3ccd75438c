package roster

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the coach scoped routes on coach (which must run
// auth.RequireStaff) and the shared lookups on api.
func RegisterRoutes(api, coach, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	coach.GET("/coach/me", h.Me)
	coach.GET("/coach/teams", h.MyTeams)

	api.GET("/teams/:team_id", h.teamAccess, h.GetTeam)
	api.GET("/teams/:team_id/roster", h.teamAccess, h.GetRoster)
	api.GET("/students/:student_id", h.studentAccess, h.GetStudent)

	admin.GET("/admin/staff", h.ListStaff)
	admin.GET("/admin/teams", h.ListTeams)
}

// ---------- handlers ----------

// teamAccess lets admins through and otherwise requires the caller to coach :team_id.
func (h *Handler) teamAccess(c *gin.Context) {
	if auth.IsAdmin(c) {
		c.Next()
		return
	}
	if err := h.svc.AuthorizeTeam(c.Request.Context(), auth.StaffID(c), c.Param("team_id")); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.Next()
}

func (h *Handler) studentAccess(c *gin.Context) {
	if auth.IsAdmin(c) {
		c.Next()
		return
	}
	if err := h.svc.AuthorizeStudent(c.Request.Context(), auth.StaffID(c), c.Param("student_id")); err != nil {
		apierr.Abort(c, err)
		return
	}
	c.Next()
}

// GET /coach/me
func (h *Handler) Me(c *gin.Context) {
	st, err := h.svc.CurrentStaff(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /coach/teams
func (h *Handler) MyTeams(c *gin.Context) {
	teams, err := h.svc.MyTeams(c.Request.Context(), auth.StaffID(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": teams})
}

// GET /teams/:team_id
func (h *Handler) GetTeam(c *gin.Context) {
	t, err := h.svc.TeamByID(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if t == nil {
		apierr.Respond(c, apierr.NotFound("team not found"))
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /teams/:team_id/roster
func (h *Handler) GetRoster(c *gin.Context) {
	students, err := h.svc.ActiveRoster(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": students})
}

// GET /students/:student_id
func (h *Handler) GetStudent(c *gin.Context) {
	st, err := h.svc.StudentByID(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if st == nil {
		apierr.Respond(c, apierr.NotFound("student not found"))
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /admin/staff
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.svc.ListStaff(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": staff})
}

// GET /admin/teams
func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.svc.AllTeams(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": teams, "total": len(teams)})
}
