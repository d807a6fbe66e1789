// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is an FTP account row as consumed by the FTP daemon. The primary
// group reference lives directly on the row (PrimaryGID); supplementary
// group membership is expressed only through Group.Members.
type User struct {
	ID         int64     // Row identifier, auto-assigned by the database.
	Login      string    // Unique login name, the daemon's user key.
	UID        int64     // Numeric unix uid the daemon assumes for this account.
	PrimaryGID int64     // GID of the user's main group.
	HomeDir    string    // Absolute home directory path.
	Shell      string    // Login shell, usually a non-interactive one.
	Name       string    // Display name.
	Email      string    // Contact email.
	Company    string    // Free-text company field.
	Comment    string    // Free-text admin comment.
	Disabled   bool      // When set, the daemon rejects logins for this account.
	CreatedAt  time.Time // Timestamp of account creation.
}
