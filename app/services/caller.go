package services

// Caller identifies who is making a request. The zero value is an anonymous caller.
type Caller struct {
	UserID  uint
	IsStaff bool
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != 0
}

// requireStaff returns ErrUnauthenticated for anonymous callers and ErrForbidden for
// authenticated non-staff callers.
func requireStaff(c Caller) error {
	if !c.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !c.IsStaff {
		return ErrForbidden
	}
	return nil
}
