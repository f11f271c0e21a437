// Package auth implements account registration, email verification,
// password checking and JWT issuance/validation for the API.
//
// Authentication is stateless: a successful login returns a signed
// bearer token carrying the user's identity and role, and the gin
// middleware in this package validates it on protected routes.
package auth
