// Package models defines the records exchanged with the bcard2 API and kept
// in the local session.
package models

import "strings"

// Name is a person's full name; Middle is optional.
type Name struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

func (n Name) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.First, n.Middle, n.Last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// User is the identity reconstituted from a login token.
type User struct {
	ID         string `json:"_id"`
	Name       Name   `json:"name"`
	IsBusiness bool   `json:"isBusiness"`
	IsAdmin    bool   `json:"isAdmin"`
}

// CanManageCards reports whether the user may list and create own cards.
func (u User) CanManageCards() bool {
	return u.IsBusiness || u.IsAdmin
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request body. The admin flag is deliberately
// absent: it can't be set from the client.
type Registration struct {
	Name       Name    `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Image      Image   `json:"image"`
	Address    Address `json:"address"`
	IsBusiness bool    `json:"isBusiness"`
}
