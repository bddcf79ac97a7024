package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the roles accepted on admin routes.
type UserRole string

// Known roles.
const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// JWTClaims carries the identity attached to authenticated requests. Token
// issuance lives outside this service; only verification happens here.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
