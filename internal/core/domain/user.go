package domain

// UserRole is the staff role used to gate admin-only ledger actions.
type UserRole string

const (
	RoleMember UserRole = "MEMBER"
	RoleAdmin  UserRole = "ADMIN"
)

// User is a staff member operating a terminal. Identity and sessions live in
// an external service; the ledger only needs the role and the admin PIN hash
// to gate discounts and reversals.
type User struct {
	UserID  string   `json:"userID"`
	Name    string   `json:"name"`
	Role    UserRole `json:"role"`
	PinHash string   `json:"-"` // bcrypt hash of the admin PIN, never serialized
	AuditFields
}

// IsAdmin reports whether the user may authorize discounts and reversals.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
