package domain

// UserRole users.role
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User users table. Owned by the auth service; read-only here.
type User struct {
	UserID   string   `db:"user_id"`
	Email    string   `db:"email"`
	FullName string   `db:"full_name"`
	Role     UserRole `db:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
