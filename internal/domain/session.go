package domain

// ============================================================
// Session & users
// ============================================================

// Roles granted admin capabilities. The backend prefixes Spring roles with ROLE_.
const (
	RoleAdmin       = "ADMIN"
	RoleSpringAdmin = "ROLE_ADMIN"
)

// Session is the authenticated identity held for the life of a login.
type Session struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// IsAdmin reports whether the session carries an admin role.
func (s *Session) IsAdmin() bool {
	if s == nil {
		return false
	}
	return s.Role == RoleAdmin || s.Role == RoleSpringAdmin
}

// Credentials is the body for POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// ProfileUpdate is the body for PUT /users/profile.
type ProfileUpdate struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	CurrentEmail string `json:"currentEmail"`
}

// ProfileResponse is returned by PUT /users/profile. Token is only present when
// the email changed and the backend re-issued credentials.
type ProfileResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

// PasswordChange is the form behind POST /users/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=NewPassword"`
}

// SuperMember is a restricted account created by an admin for delegated data entry.
// Password is only set in the creating session and is never persisted.
type SuperMember struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// SuperMemberDraft is the body for POST /users/create-super-member.
type SuperMemberDraft struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// NotificationPreferences are kept locally, never sent to the backend.
type NotificationPreferences struct {
	NewMembers   bool `json:"newMembers"`
	Transactions bool `json:"transactions"`
	Events       bool `json:"events"`
}

// DefaultNotificationPreferences enables every category.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{NewMembers: true, Transactions: true, Events: true}
}
