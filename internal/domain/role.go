package domain

// Role names embedded in JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
