package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     Role    `json:"role"`
	Orders   []Order `json:"orders"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile is a User without its password, safe to hand out over the API.
type Profile struct {
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Orders []Order `json:"orders"`
}

func (u *User) Profile() Profile {
	orders := u.Orders
	if orders == nil {
		orders = []Order{}
	}
	return Profile{
		UserID: u.UserID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Orders: orders,
	}
}
