package model

// User represents an application user record as stored in the `users`
// table, plus the roles joined from `user_roles`.  The password column only
// ever holds a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – optional first name.
//  Surname      – optional last name.
//  Username     – unique login name.
//  Email        – contact address.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  Roles        – roles assigned through user_roles.
type User struct {
	ID           uint64  `json:"id"`             // users.id
	Name         *string `json:"name,omitempty"` // users.name (nullable)
	Surname      *string `json:"surname,omitempty"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // users.password
	IsActive     bool    `json:"is_active"`
	Roles        []Role  `json:"roles"`
}

// RoleNames returns the names of the user's roles in stored order.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role represents a row in the `roles` table.  Users reference roles
// through the user_roles join table; roles are never created by the API.
type Role struct {
	ID   uint64 `json:"id"`   // roles.id
	Name string `json:"name"` // roles.name
}

// RoleAdmin is granted to the configured administrator and gates every
// mutating endpoint.
const RoleAdmin = "admin"

// UserCreate is the registration payload.
type UserCreate struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Surname  string `json:"surname" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5,max=72"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=5,max=72"`
}

// RolesInput lists role names to assign; the set replaces the current one.
type RolesInput struct {
	Roles []string `json:"roles" validate:"required,dive,min=1,max=50"`
}

// PasswordChange asks for the current password before accepting a new one.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5,max=72"`
}

// StateChange toggles the is_active flag.  A pointer keeps "false" distinct
// from a missing field.
type StateChange struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
