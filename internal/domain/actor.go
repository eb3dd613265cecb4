package domain

// Actor is the authenticated caller of a service operation. Transports build
// it from the session and pass it explicitly; services never look it up from
// ambient state.
type Actor struct {
	ID        UserID
	Username  string
	Role      Role
	IP        string
	UserAgent string
}

func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
