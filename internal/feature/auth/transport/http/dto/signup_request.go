// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// SignupReq represents the request body for the /signup endpoint.
// It uses Gin's binding tags for validation (required, email format, password length).
// max=72 counts characters; the usecase also rejects passwords over 72 bytes.
type SignupReq struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}
