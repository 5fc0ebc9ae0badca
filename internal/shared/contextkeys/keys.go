package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "codbank context key " + string(c)
}

const (
	// UserIDKey holds the identity provider handle of the session owner.
	UserIDKey = contextKey("userID")
	// UsernameKey holds the session subject.
	UsernameKey = contextKey("username")
	// RoleKey holds the session role claim.
	RoleKey = contextKey("role")
	// RequestIDKey holds the X-Request-ID assigned by the requestid middleware.
	RequestIDKey = contextKey("requestID")
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
