package domain

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User models an authenticated actor in the system. The username is unique
// and immutable after creation.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
