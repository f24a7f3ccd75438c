package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /admin/reports/weekly?staff_id=
	admin.POST("/admin/reports/weekly", h.RunWeekly)
	// GET /admin/reports/weekly/preview?staff_id=
	admin.GET("/admin/reports/weekly/preview", h.PreviewWeekly)
}

func (h *Handler) RunWeekly(c *gin.Context) {
	res, err := h.svc.Run(c.Request.Context(), c.Query("staff_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PreviewWeekly(c *gin.Context) {
	html, err := h.svc.Preview(c.Request.Context(), c.Query("staff_id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
