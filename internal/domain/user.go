package domain

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrNoResponse   = errors.New("no response from server")
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// User is the server-owned profile. This layer treats it as read-only
// except for optimistic patches to denormalized fields (Wishlist).
type User struct {
	ID              string    `json:"_id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Avatar          string    `json:"avatar,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	IsVerified      bool      `json:"isVerified"`
	Wishlist        []string  `json:"wishlist,omitempty"`
	EnrolledCourses []string  `json:"enrolledCourses,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
}

// HasWishlisted reports whether courseID is in the user's wishlist.
func (u *User) HasWishlisted(courseID string) bool {
	for _, id := range u.Wishlist {
		if id == courseID {
			return true
		}
	}
	return false
}
