package apperrors

var (
	// Sentinel errors shared by the use cases and repositories.
	ErrEmptyText          = InvalidArg("message text cannot be empty")
	ErrSelfConversation   = InvalidArg("sender and recipient must be different users")
	ErrEmptyMessageIDs    = InvalidArg("message_ids must include at least one id")
	ErrUserNotFound       = NotFound("user not found")
	ErrUsernameTaken      = AlreadyExists("username is already taken")
	ErrInvalidCredentials = Unauthorized("invalid credentials")
	ErrInvalidToken       = Unauthorized("invalid or expired token")
)

func ErrStore(cause error) error {
	return Unavailable("durable store unavailable", cause)
}
