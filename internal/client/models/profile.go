// Package models defines the client-side data models of the evote CLI:
// the signed-in voter, candidates, party tallies and local vote receipts.
package models

import (
	"strings"

	"github.com/dmitrijs2005/evote/internal/filex"
)

// Profile is the voter profile returned by the login endpoint.
type Profile struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NationalID  string `json:"national_id"`
	DateOfBirth string `json:"dob"`
	State       string `json:"state"`
	LGA         string `json:"lga"`
	VIN         string `json:"vin"`
	ProfilePic  string `json:"profile_pic"`
}

// FullName joins first and last name, skipping empty parts.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.Join([]string{p.FirstName, p.LastName}, " "))
}

// Credentials is the login request body.
type Credentials struct {
	NationalID string `json:"national_id"`
	Password   string `json:"password"`
}

// AuthResult is the login response body.
type AuthResult struct {
	User    Profile `json:"user"`
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
}

// Registration carries a new account, sent as multipart form data.
type Registration struct {
	NationalID  string
	FirstName   string
	LastName    string
	DateOfBirth string
	State       string
	LGA         string
	VIN         string
	Password    string
	Photo       *filex.Photo
}
