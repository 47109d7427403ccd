package model

// Role is the access level attached to a user record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the two known levels.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a credential record in the user table. Passwords are
// stored as-is: this is a demo credential store, not a hardened one.
type User struct {
	Username    string `json:"username" gorm:"primaryKey;size:255"`
	Password    string `json:"password" gorm:"size:255"`
	Role        Role   `json:"role" gorm:"size:50;default:'user'"`
	DisplayName string `json:"displayName" gorm:"size:255"`
	Avatar      string `json:"avatar" gorm:"type:text"` // data URI or empty
}

// Identity is the logged-in view of a user, persisted under the "user"
// document key. It never carries the password.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
