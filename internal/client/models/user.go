// Package models defines the data the client exchanges with the Moonlight
// Match backend: the session user, events, matching status and matches.
package models

import (
	"encoding/json"
	"time"
)

// User is the authenticated identity held by the session store.
type User struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name,omitempty"`
	Image         string          `json:"image,omitempty"`
	Description   string          `json:"description,omitempty"`
	FormResponse  json.RawMessage `json:"formResponse,omitempty"`
	DataRetention bool            `json:"dataRetention"`
	IsAdmin       bool            `json:"isAdmin"`
	EventID       string          `json:"eventId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Clone returns a deep copy so callers cannot mutate the store's user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.FormResponse != nil {
		c.FormResponse = append(json.RawMessage(nil), u.FormResponse...)
	}
	return &c
}

// UserPatch lists the fields of a partial user update. Nil fields are left
// untouched by Apply.
type UserPatch struct {
	Email         *string
	Name          *string
	Image         *string
	Description   *string
	FormResponse  json.RawMessage
	DataRetention *bool
	IsAdmin       *bool
	EventID       *string
	UpdatedAt     *time.Time
}

// Empty reports whether the patch sets nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Image == nil && p.Description == nil &&
		p.FormResponse == nil && p.DataRetention == nil && p.IsAdmin == nil &&
		p.EventID == nil && p.UpdatedAt == nil
}

// Apply shallow-merges p over u and returns the result. u is not modified.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Image != nil {
		u.Image = *p.Image
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.FormResponse != nil {
		u.FormResponse = append(json.RawMessage(nil), p.FormResponse...)
	}
	if p.DataRetention != nil {
		u.DataRetention = *p.DataRetention
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	if p.EventID != nil {
		u.EventID = *p.EventID
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
	return u
}

// AuthResult is what login and registration return.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
