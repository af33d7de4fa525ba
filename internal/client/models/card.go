package models

import (
	"fmt"
	"strings"
	"time"
)

type Image struct {
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`
}

type Address struct {
	State       string `json:"state,omitempty"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber int    `json:"houseNumber"`
	Zip         int    `json:"zip,omitempty"`
}

// String renders the address as "street house, city, country".
func (a Address) String() string {
	if a == (Address{}) {
		return "N/A"
	}
	house := ""
	if a.HouseNumber != 0 {
		house = fmt.Sprint(a.HouseNumber)
	}
	return fmt.Sprintf("%s %s, %s, %s", a.Street, house, a.City, a.Country)
}

// Card is a business card as served by the API.
type Card struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Web         string    `json:"web,omitempty"`
	Image       Image     `json:"image"`
	Address     Address   `json:"address"`
	BizNumber   int       `json:"bizNumber,omitempty"`
	Likes       []string  `json:"likes"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// LikedBy reports whether userID is among the card's likes.
func (c Card) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// HasTitlePrefix is the case-insensitive "title starts with" search match.
func (c Card) HasTitlePrefix(q string) bool {
	return strings.HasPrefix(strings.ToLower(c.Title), strings.ToLower(q))
}

// CardInput is the create-card request body.
type CardInput struct {
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Description string  `json:"description"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Web         string  `json:"web,omitempty"`
	Image       Image   `json:"image"`
	Address     Address `json:"address"`
}
