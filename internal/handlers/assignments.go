package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/tracking"
)

type AssignmentHandler struct {
	assignments *tracking.AssignmentManager
}

func NewAssignmentHandler(assignments *tracking.AssignmentManager) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func (h *AssignmentHandler) List(c *gin.Context) {
	list, err := h.assignments.ListAssignments(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"assignments": list})
}

func (h *AssignmentHandler) Stats(c *gin.Context) {
	stats, err := h.assignments.AssignmentStats(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, stats)
}

type assignmentForm struct {
	ItemID string `json:"item_id" form:"item_id"`
	UserID string `json:"user_id" form:"user_id"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var form assignmentForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	a, err := h.assignments.CreateAssignment(c.Request.Context(), form.ItemID, form.UserID, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, a)
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignments.RemoveAssignment(c.Request.Context(), c.Param("id"), middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	Success(c, nil)
}

func (h *AssignmentHandler) MyItems(c *gin.Context) {
	items, err := h.assignments.MyItems(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
