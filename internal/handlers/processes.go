package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/models"
	"prodtrack/internal/tracking"
)

type ProcessHandler struct {
	processes *tracking.ProcessManager
}

func NewProcessHandler(processes *tracking.ProcessManager) *ProcessHandler {
	return &ProcessHandler{processes: processes}
}

// Create adds a step to the item named in the path.
func (h *ProcessHandler) Create(c *gin.Context) {
	var in tracking.CreateProcessInput
	if err := c.ShouldBind(&in); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.processes.CreateProcess(c.Request.Context(), c.Param("id"), in, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, p)
}

type processStatusForm struct {
	Status models.ProcessStatus `json:"status" form:"status"`
}

func (h *ProcessHandler) UpdateStatus(c *gin.Context) {
	var form processStatusForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.processes.UpdateProcessStatus(c.Request.Context(), c.Param("id"), form.Status, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, p)
}

type assigneeForm struct {
	UserID string `json:"user_id" form:"user_id"`
}

func (h *ProcessHandler) Assign(c *gin.Context) {
	var form assigneeForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.processes.AssignProcess(c.Request.Context(), c.Param("id"), form.UserID, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, p)
}

type processNoteForm struct {
	Comment string `json:"comment" form:"comment"`
}

func (h *ProcessHandler) AddNote(c *gin.Context) {
	var form processNoteForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	u, err := h.processes.AddProcessNote(c.Request.Context(), c.Param("id"), form.Comment, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, u)
}

type delayForm struct {
	Category models.DelayCategory `json:"category" form:"category"`
	Details  string               `json:"details" form:"details"`
}

func (h *ProcessHandler) ReportDelay(c *gin.Context) {
	var form delayForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	p, err := h.processes.ReportDelay(c.Request.Context(), c.Param("id"), form.Category, form.Details, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, p)
}

func (h *ProcessHandler) History(c *gin.Context) {
	hist, err := h.processes.ProcessHistory(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, hist)
}

func (h *ProcessHandler) Mine(c *gin.Context) {
	mine, err := h.processes.MyProcesses(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, mine)
}
