package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Role          UserRole  `json:"role"`
	IsVerified    bool      `json:"isVerified"`
	IsActive      bool      `json:"isActive"`
	BookingsCount int       `json:"bookingsCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

func (u User) RecordID() string {
	return u.ID
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserInput struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone,omitempty"`
	Password  string   `json:"password,omitempty"`
	Role      UserRole `json:"role"`
	IsActive  bool     `json:"isActive"`
}
