package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Session is the authenticated caller as seen by the services.
type Session struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (s Session) IsAuthenticated() bool {
	return s.UserID != ""
}

func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or change a record owned by userID.
func (s Session) CanAccess(userID string) bool {
	return s.IsAdmin() || (s.IsAuthenticated() && s.UserID == userID)
}
