package handler

const (
	errInternalServer = "Internal server error"
	errTaskNotFound   = "Task not found"
	errTaskForbidden  = "Task belongs to another user"
	errEmailTaken     = "Email already exists"
	errUnauthorized   = "Invalid email or password"
)
