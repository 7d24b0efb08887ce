package models

// User is a single entry of the user directory.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// Users is the directory listing, kept in insertion order.
type Users []User

// CreateUserRequest is the body of POST /api/users.
// Pointer fields distinguish an absent key from an empty string:
// only presence is checked, never the content.
type CreateUserRequest struct {
	Username *string `json:"username" validate:"required"`
	Phone    *string `json:"phone" validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}. A nil field is left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
}

// IsEmpty reports whether the update names no field.
func (r UpdateUserRequest) IsEmpty() bool {
	return r.Username == nil && r.Phone == nil
}

// HelloResponse is the body of GET /api/hello.
type HelloResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the message of a 4xx or 5xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
