package tracking

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"prodtrack/internal/auth"
	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

const minPasswordLength = 6

type CreateUserInput struct {
	Name         string          `json:"name" form:"name"`
	Email        string          `json:"email" form:"email"`
	Password     string          `json:"password" form:"password"`
	Role         models.UserRole `json:"role" form:"role"`
	DepartmentID string          `json:"department_id" form:"department_id"`
}

type UpdateUserInput struct {
	Name         string          `json:"name" form:"name"`
	Role         models.UserRole `json:"role" form:"role"`
	DepartmentID string          `json:"department_id" form:"department_id"`
}

type PasswordInput struct {
	Current string `json:"current_password" form:"current_password"`
	New     string `json:"new_password" form:"new_password"`
	Confirm string `json:"confirm_password" form:"confirm_password"`
}

type UserManager struct {
	base
	users   store.Users
	catalog store.Catalog
}

func NewUserManager(users store.Users, catalog store.Catalog, audit store.Audit, deps Deps) *UserManager {
	return &UserManager{base: newBase("users", audit, deps), users: users, catalog: catalog}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", invalid("email %q is not valid", email)
	}
	return email, nil
}

// departmentRef resolves an optional department id. Blank means none.
func (m *UserManager) departmentRef(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	if _, err := m.catalog.FindDepartment(ctx, id); errors.Is(err, store.ErrNotFound) {
		return nil, invalid("department %q does not exist", id)
	} else if err != nil {
		return nil, m.storeErr("load department", "department", "", err)
	}
	return &id, nil
}

func (m *UserManager) CreateUser(ctx context.Context, in CreateUserInput, actor Actor) (*models.User, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, invalid("unknown role %q", in.Role)
	}
	dept, err := m.departmentRef(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, m.storeErr("hash password", "user", "", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		DepartmentID: dept,
	}
	if err := m.users.CreateUser(ctx, u); err != nil {
		return nil, m.storeErr("create user", "department", KindDuplicateEmail, err)
	}
	m.record(ctx, actor, "user", u.ID, "create", "created "+string(u.Role)+" "+u.Email)
	m.touched(ctx)
	return u, nil
}

func (m *UserManager) UpdateUser(ctx context.Context, id string, in UpdateUserInput, actor Actor) (*models.User, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if !in.Role.Valid() {
		return nil, invalid("unknown role %q", in.Role)
	}
	dept, err := m.departmentRef(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}
	if err := m.users.UpdateUser(ctx, id, name, in.Role, dept); err != nil {
		return nil, m.storeErr("update user", "user", "", err)
	}
	u, err := m.users.FindUser(ctx, id)
	if err != nil {
		return nil, m.storeErr("load user", "user", "", err)
	}
	m.record(ctx, actor, "user", id, "update", "role "+string(in.Role))
	m.touched(ctx)
	return u, nil
}

func (m *UserManager) DeleteUser(ctx context.Context, id string, actor Actor) error {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if id == actor.UserID {
		return invalid("you cannot delete your own account")
	}
	if err := m.users.DeleteUser(ctx, id); err != nil {
		return m.storeErr("delete user", "user", "", err)
	}
	m.record(ctx, actor, "user", id, "delete", "deleted user")
	m.touched(ctx)
	return nil
}

func (m *UserManager) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := m.users.ListUsers(ctx)
	if err != nil {
		return nil, m.storeErr("list users", "user", "", err)
	}
	return users, nil
}

// Assignable lists users that items and processes can be given to.
func (m *UserManager) Assignable(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	users, err := m.users.ListUsers(ctx)
	if err != nil {
		return nil, m.storeErr("list users", "user", "", err)
	}
	out := users[:0]
	for _, u := range users {
		if u.Role == models.RoleEmployee {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *UserManager) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	u, err := m.users.FindUser(ctx, actor.UserID)
	if err != nil {
		return nil, m.storeErr("load user", "user", "", err)
	}
	return u, nil
}

func (m *UserManager) UpdateProfile(ctx context.Context, name, email string, actor Actor) (*models.User, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := m.users.UpdateProfile(ctx, actor.UserID, name, email); err != nil {
		return nil, m.storeErr("update profile", "user", KindDuplicateEmail, err)
	}
	m.touched(ctx)
	return m.Me(ctx, actor)
}

func (m *UserManager) UpdatePassword(ctx context.Context, in PasswordInput, actor Actor) error {
	if err := RequireAuth(actor); err != nil {
		return err
	}
	if in.New != in.Confirm {
		return invalid("new passwords do not match")
	}
	if len(in.New) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	u, err := m.users.FindUser(ctx, actor.UserID)
	if err != nil {
		return m.storeErr("load user", "user", "", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Current) {
		return invalid("current password is incorrect")
	}
	hash, err := auth.HashPassword(in.New)
	if err != nil {
		return m.storeErr("hash password", "user", "", err)
	}
	if err := m.users.SetPasswordHash(ctx, u.ID, hash); err != nil {
		return m.storeErr("update password", "user", "", err)
	}
	m.record(ctx, actor, "user", u.ID, "password_change", "password changed")
	return nil
}

// ErrBadCredentials is returned by Authenticate for any credential failure.
var ErrBadCredentials = unauthorized("invalid email or password")

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (m *UserManager) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := m.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	} else if err != nil {
		return nil, m.storeErr("load user", "user", "", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}
