package handlers

import (
	"go.uber.org/zap"

	"prodtrack/internal/auth"
	"prodtrack/internal/tracking"
)

// Handlers groups the JSON endpoints by area.
type Handlers struct {
	Auth       *AuthHandler
	Item       *ItemHandler
	Process    *ProcessHandler
	Assignment *AssignmentHandler
	User       *UserHandler
	Dashboard  *DashboardHandler
}

func New(m *tracking.Managers, tokens *auth.Tokens, log *zap.Logger) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(m.Users, tokens, log),
		Item:       NewItemHandler(m.Items),
		Process:    NewProcessHandler(m.Processes),
		Assignment: NewAssignmentHandler(m.Assignments),
		User:       NewUserHandler(m.Users),
		Dashboard:  NewDashboardHandler(m.Dashboard, m.Items),
	}
}
