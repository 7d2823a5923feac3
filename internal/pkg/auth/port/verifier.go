package port

// Identity is the authenticated principal attached to a connection or request.
type Identity struct {
	UserID   string
	Username string
}

// Verifier checks a bearer credential and returns the identity it encodes.
// Implementations return an error for any token that is not currently valid;
// callers treat that as a fatal authentication failure for the attempt.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// Issuer mints a credential for an identity after a successful login.
type Issuer interface {
	Issue(id Identity) (string, error)
}
