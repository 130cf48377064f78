package auth

import "errors"

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// Error codes surfaced to the HTTP layer.
const (
	CodeInvalidInput       = "invalid_input"
	CodeEmailExists        = "email_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeUserNotFound       = "user_not_found"
	CodeAuthError          = "auth_error"
)

const (
	messageEmailTaken  = "That email is already taken. Please choose a different one."
	messageLoginFailed = "Login Unsuccessful. Please check email and password"
)
