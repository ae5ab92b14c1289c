package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/models"
	"prodtrack/internal/store"
	"prodtrack/internal/tracking"
)

type ItemHandler struct {
	items *tracking.ItemManager
}

func NewItemHandler(items *tracking.ItemManager) *ItemHandler {
	return &ItemHandler{items: items}
}

func itemFilter(c *gin.Context) store.ItemFilter {
	return store.ItemFilter{
		Status:       models.ItemStatus(c.Query("status")),
		DepartmentID: c.Query("department_id"),
	}
}

func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.ListItems(c.Request.Context(), itemFilter(c), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

func (h *ItemHandler) Create(c *gin.Context) {
	var in tracking.CreateItemInput
	if err := c.ShouldBind(&in); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), in, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, item)
}

func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.GetItemDetail(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.items.DeleteItem(c.Request.Context(), c.Param("id"), middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	Success(c, nil)
}

type itemStatusForm struct {
	Status models.ItemStatus `json:"status" form:"status"`
}

func (h *ItemHandler) UpdateStatus(c *gin.Context) {
	var form itemStatusForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.items.UpdateItemStatus(c.Request.Context(), c.Param("id"), form.Status, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, item)
}

type outputForm struct {
	CurrentOutput *int `json:"current_output" form:"current_output"`
}

func (h *ItemHandler) UpdateOutput(c *gin.Context) {
	var form outputForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	if form.CurrentOutput == nil {
		BadRequest(c, "current_output is required")
		return
	}
	res, err := h.items.UpdateItemOutput(c.Request.Context(), c.Param("id"), *form.CurrentOutput, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, res)
}

type noteForm struct {
	Content string `json:"content" form:"content"`
}

func (h *ItemHandler) AddNote(c *gin.Context) {
	var form noteForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	note, err := h.items.AddItemNote(c.Request.Context(), c.Param("id"), form.Content, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, note)
}

func (h *ItemHandler) Departments(c *gin.Context) {
	depts, err := h.items.Departments(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"departments": depts})
}

func (h *ItemHandler) Machines(c *gin.Context) {
	machines, err := h.items.Machines(c.Request.Context(), c.Query("department_id"), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"machines": machines})
}
