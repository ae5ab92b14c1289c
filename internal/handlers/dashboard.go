package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/report"
	"prodtrack/internal/tracking"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboard *tracking.Dashboard
	items     *tracking.ItemManager
}

func NewDashboardHandler(dashboard *tracking.Dashboard, items *tracking.ItemManager) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, items: items}
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	ov, err := h.dashboard.AdminOverview(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, ov)
}

func (h *DashboardHandler) Encoder(c *gin.Context) {
	ov, err := h.dashboard.EncoderOverview(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, ov)
}

func (h *DashboardHandler) Employee(c *gin.Context) {
	ov, err := h.dashboard.EmployeeOverview(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, ov)
}

func (h *DashboardHandler) Analytics(c *gin.Context) {
	an, err := h.dashboard.Analytics(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, an)
}

func (h *DashboardHandler) AssignmentBoard(c *gin.Context) {
	board, err := h.dashboard.AssignmentBoard(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, board)
}

func (h *DashboardHandler) Audit(c *gin.Context) {
	logs, err := h.dashboard.AuditTrail(c.Request.Context(), queryInt(c, "limit", 0), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"logs": logs})
}

// Export streams the filtered item list as an xlsx download.
func (h *DashboardHandler) Export(c *gin.Context) {
	f, err := h.items.ExportItems(c.Request.Context(), itemFilter(c), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+report.FileName(time.Now())+`"`)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
