// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds the column names of every table the repositories touch,
// so that SQL is assembled from one definition instead of scattered literals.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table                  string
	ID                     string
	PublicID               string
	Name                   string
	Email                  string
	PasswordHash           string
	Role                   string
	Status                 string
	EmailVerifiedAt        string
	VerifyToken            string
	VerifyTokenGeneratedAt string
	SessionNonce           string
	ResetToken             string
	ResetTokenGeneratedAt  string
	Version                string
	CreatedAt              string
	UpdatedAt              string
	DeletedAt              string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:                  "users.account",
	ID:                     "id",
	PublicID:               "publicid",
	Name:                   "name",
	Email:                  "email",
	PasswordHash:           "passwordhash",
	Role:                   "role",
	Status:                 "status",
	EmailVerifiedAt:        "emailverifiedat",
	VerifyToken:            "verifytoken",
	VerifyTokenGeneratedAt: "verifytokengeneratedat",
	SessionNonce:           "sessionnonce",
	ResetToken:             "resettoken",
	ResetTokenGeneratedAt:  "resettokengeneratedat",
	Version:                "version",
	CreatedAt:              "createdat",
	UpdatedAt:              "updatedat",
	DeletedAt:              "deletedat",
}

// Columns returns all standard column names in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.PublicID, t.Name, t.Email, t.PasswordHash, t.Role, t.Status,
		t.EmailVerifiedAt, t.VerifyToken, t.VerifyTokenGeneratedAt, t.SessionNonce,
		t.ResetToken, t.ResetTokenGeneratedAt, t.Version, t.CreatedAt, t.UpdatedAt,
		t.DeletedAt,
	}
}
