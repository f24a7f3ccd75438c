package campaign

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /admin/campaigns/variables
	admin.GET("/admin/campaigns/variables", h.Variables)
	// POST /admin/campaigns/preview
	admin.POST("/admin/campaigns/preview", h.Preview)
	// POST /admin/campaigns/send
	admin.POST("/admin/campaigns/send", h.Send)
}

// ---------- handlers ----------

func (h *Handler) Variables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"variables": VariableNames})
}

func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Send(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Send(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
