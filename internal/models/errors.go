package models

import "errors"

// ErrNotFound covers both true absence and a record owned by a different
// account-holder, so a cross-tenant probe cannot tell the two apart.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness rule is violated, e.g. a second
// customer with the same name for one owner.
var ErrDuplicate = errors.New("record already exists")
