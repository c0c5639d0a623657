package session

import (
	"strings"

	"github.com/example/storefront/internal/form"
)

// User is the authenticated identity returned by the identity service
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// AuthResult is the identity service response to login and registration
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Credentials struct {
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}

func (c Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	return form.Validate(c, nil)
}

// Registration is the sign-up form. ConfirmPassword never leaves the client.
// Passwords are capped at 72 bytes, the most bcrypt will hash.
type Registration struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,email"`
	Password        string `json:"password" validate:"notblank,min=8,maxbytes=72"`
	ConfirmPassword string `json:"-" form:"confirmPassword" validate:"eqfield=Password"`
}

var registrationMessages = map[string]string{
	"confirmPassword": "Passwords do not match",
}

func (r Registration) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return form.Validate(r, registrationMessages)
}

// ProfileUpdate is the editable part of a user profile
type ProfileUpdate struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (p ProfileUpdate) Validate() error {
	p.Email = strings.TrimSpace(p.Email)
	return form.Validate(p, nil)
}
