package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/tracking"
)

type UserHandler struct {
	users *tracking.UserManager
}

func NewUserHandler(users *tracking.UserManager) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"users": users})
}

// Assignable lists employees for assignment pickers.
func (h *UserHandler) Assignable(c *gin.Context) {
	users, err := h.users.Assignable(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"users": users})
}

func (h *UserHandler) Create(c *gin.Context) {
	var in tracking.CreateUserInput
	if err := c.ShouldBind(&in); err != nil {
		bindFailed(c, err)
		return
	}
	u, err := h.users.CreateUser(c.Request.Context(), in, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, u)
}

func (h *UserHandler) Update(c *gin.Context) {
	var in tracking.UpdateUserInput
	if err := c.ShouldBind(&in); err != nil {
		bindFailed(c, err)
		return
	}
	u, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), in, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id"), middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	Success(c, nil)
}

type profileForm struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), form.Name, form.Email, middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, u)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var in tracking.PasswordInput
	if err := c.ShouldBind(&in); err != nil {
		bindFailed(c, err)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), in, middleware.GetActor(c)); err != nil {
		fail(c, err)
		return
	}
	Success(c, nil)
}
