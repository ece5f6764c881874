package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Detailed error types below match these with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrLimitExceeded       = errors.New("limit exceeded")
	ErrInvalidRelationship = errors.New("invalid relationship")
	ErrFormatUnsupported   = errors.New("format unsupported")
	ErrDecodeFailure       = errors.New("decode failure")
	ErrImportConflict      = errors.New("import conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderUnsupported = errors.New("ai provider unsupported")
)

// Subject kinds used in NotFoundError.
const (
	KindWorld        = "world"
	KindElement      = "element"
	KindRelationship = "relationship"
)

// Limit names used in LimitError.
const (
	LimitMaxWorlds           = "maxWorlds"
	LimitMaxElementsPerWorld = "maxElementsPerWorld"
)

// NotFoundError reports a missing world, element or relationship.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// LimitError reports an Access Policy ceiling that would be exceeded.
type LimitError struct {
	Limit   string
	Max     int
	WorldID string
}

func (e *LimitError) Error() string {
	if e.WorldID != "" {
		return fmt.Sprintf("limit exceeded: %s (max %d) in world %s", e.Limit, e.Max, e.WorldID)
	}
	return fmt.Sprintf("limit exceeded: %s (max %d)", e.Limit, e.Max)
}

// Is matches ErrLimitExceeded.
func (e *LimitError) Is(target error) bool { return target == ErrLimitExceeded }

// Relationship rejection reasons.
const (
	ReasonSelfReference = "self-referential relationship"
	ReasonCrossWorld    = "endpoints belong to different worlds"
	ReasonDuplicate     = "relationship already exists"
	ReasonUnknownType   = "unknown relationship type"
)

// RelationshipError reports an invalid relationship endpoint pair.
type RelationshipError struct {
	Reason string
	FromID string
	ToID   string
}

func (e *RelationshipError) Error() string {
	return fmt.Sprintf("invalid relationship %s -> %s: %s", e.FromID, e.ToID, e.Reason)
}

// Is matches ErrInvalidRelationship.
func (e *RelationshipError) Is(target error) bool { return target == ErrInvalidRelationship }

// FormatError reports a disallowed or unrecognized format.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q unsupported: %s", e.Format, e.Reason)
}

// Is matches ErrFormatUnsupported.
func (e *FormatError) Is(target error) bool { return target == ErrFormatUnsupported }

// DecodeError reports a malformed or version-incompatible import payload.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding import: %s: %v", e.Reason, e.Err)
	}
	return "decoding import: " + e.Reason
}

// Is matches ErrDecodeFailure.
func (e *DecodeError) Is(target error) bool { return target == ErrDecodeFailure }

func (e *DecodeError) Unwrap() error { return e.Err }

// WorldConflict describes one incoming world whose identity is taken.
type WorldConflict struct {
	WorldID       string
	ExistingTitle string
	IncomingTitle string
}

// ConflictError lists incoming worlds that collide with existing ones.
// The caller resolves each by skipping it or importing it under a new identity.
type ConflictError struct {
	Conflicts []WorldConflict
}

func (e *ConflictError) Error() string {
	titles := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		titles[i] = fmt.Sprintf("%q (%s)", c.IncomingTitle, c.WorldID)
	}
	return fmt.Sprintf("import conflict: %d world(s) already exist: %s", len(e.Conflicts), strings.Join(titles, ", "))
}

// Is matches ErrImportConflict.
func (e *ConflictError) Is(target error) bool { return target == ErrImportConflict }

// InputError reports an invalid field value supplied by the caller.
type InputError struct {
	Field   string
	Value   string
	Message string
}

func (e *InputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// ProviderError reports an AI provider that the Access Policy does not allow.
type ProviderError struct {
	Provider string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider %q is not allowed", e.Provider)
}

// Is matches ErrProviderUnsupported.
func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnsupported }
