package types

import "time"

// User represents an account in the system.
// It contains identity and audit metadata.
type User struct {
	// ID is the internal row identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's full name as given at signup.
	FullName string `json:"full_name" db:"full_name"`

	// Gender is the self-reported gender recorded at signup.
	Gender string `json:"gender" db:"gender"`

	// Age is the user's age in years at signup.
	Age int `json:"age" db:"age"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// UUID is the stable external identifier used by all downstream
	// records (inference log, reports), independent of the username.
	UUID string `json:"uuid" db:"user_uuid"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
