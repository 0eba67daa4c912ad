package models

// UserRole defines the role of a staff user.
type UserRole string

const (
	RoleMember UserRole = "MEMBER"
	RoleAdmin  UserRole = "ADMIN"
)

// User is the database row for a staff member.
type User struct {
	UserID  string   `json:"userID"` // Primary Key (UUID)
	Name    string   `json:"name"`
	Role    UserRole `json:"role"`
	PinHash string   `json:"-"`
	AuditFields
}
