package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE postgres raises for duplicate keys.
const uniqueViolation = pq.ErrorCode("23505")

const (
	KindMissingPerson       = "missing_person"
	KindMissingOrganization = "missing_organization"
	KindTransform           = "transform"
	KindWriteConflict       = "write_conflict"
	KindSetup               = "setup"
	KindUnknown             = "unknown"
)

// MissingPersonError means a source record's planter reference resolved to nothing.
type MissingPersonError struct {
	SourceID  int64
	Reference string
}

func NewMissingPersonError(sourceID int64, reference string) *MissingPersonError {
	return &MissingPersonError{SourceID: sourceID, Reference: reference}
}

func (e *MissingPersonError) Error() string {
	if e.Reference == "" {
		return fmt.Sprintf("source record %d has no planter reference", e.SourceID)
	}
	return fmt.Sprintf("no planter found for source record %d (reference %q)", e.SourceID, e.Reference)
}

type MissingOrganizationError struct {
	SourceID       int64
	OrganizationID int64
}

func NewMissingOrganizationError(sourceID, organizationID int64) *MissingOrganizationError {
	return &MissingOrganizationError{SourceID: sourceID, OrganizationID: organizationID}
}

func (e *MissingOrganizationError) Error() string {
	return fmt.Sprintf("organization %d referenced by planter %d has no stakeholder", e.OrganizationID, e.SourceID)
}

// TransformError means a derived value could not be computed.
type TransformError struct {
	SourceID int64
	Field    string
	Message  string
	Err      error
}

func NewTransformError(field, message string) *TransformError {
	return &TransformError{Field: field, Message: message}
}

func NewTransformErrorf(field, format string, args ...any) *TransformError {
	return &TransformError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *TransformError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("field '%s': %s", e.Field, msg)
	}
	if e.SourceID != 0 {
		msg = fmt.Sprintf("source record %d: %s", e.SourceID, msg)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

func (e *TransformError) AddSourceID(sourceID int64) *TransformError {
	e.SourceID = sourceID
	return e
}

func (e *TransformError) AddCause(err error) *TransformError {
	e.Err = err
	return e
}

// WriteConflictError means an insert or update violated a target constraint.
type WriteConflictError struct {
	SourceID   int64
	Table      string
	Constraint string
	Err        error
}

func (e *WriteConflictError) Error() string {
	return fmt.Sprintf("source record %d conflicts with %s (constraint %s): %v", e.SourceID, e.Table, e.Constraint, e.Err)
}

func (e *WriteConflictError) Unwrap() error {
	return e.Err
}

// FromWriteError turns a unique violation into a WriteConflictError and
// returns every other error unchanged.
func FromWriteError(err error, sourceID int64) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	return &WriteConflictError{
		SourceID:   sourceID,
		Table:      pqErr.Table,
		Constraint: pqErr.Constraint,
		Err:        err,
	}
}

// SetupError is fatal to the whole run; no records are processed.
type SetupError struct {
	Stage string
	Err   error
}

func NewSetupError(stage string, err error) *SetupError {
	return &SetupError{Stage: stage, Err: err}
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed during %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func IsSetupError(err error) bool {
	var target *SetupError
	return errors.As(err, &target)
}

func IsMissingPersonError(err error) bool {
	var target *MissingPersonError
	return errors.As(err, &target)
}

func IsTransformError(err error) bool {
	var target *TransformError
	return errors.As(err, &target)
}

func IsWriteConflictError(err error) bool {
	var target *WriteConflictError
	return errors.As(err, &target)
}

func IsMissingOrganizationError(err error) bool {
	var target *MissingOrganizationError
	return errors.As(err, &target)
}

// IsRecordError reports whether err is scoped to a single record, so the run
// policy decides whether to continue.
func IsRecordError(err error) bool {
	return err != nil && !IsSetupError(err)
}

// Classify labels err for logs and metrics.
func Classify(err error) string {
	var (
		missingPerson *MissingPersonError
		missingOrg    *MissingOrganizationError
		transform     *TransformError
		conflict      *WriteConflictError
		setup         *SetupError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missingPerson):
		return KindMissingPerson
	case errors.As(err, &missingOrg):
		return KindMissingOrganization
	case errors.As(err, &transform):
		return KindTransform
	case errors.As(err, &conflict):
		return KindWriteConflict
	case errors.As(err, &setup):
		return KindSetup
	default:
		return KindUnknown
	}
}

// ToHTTPError renders a migration failure for the admin API.
func ToHTTPError(err error, sourceID int64) *httperror.HTTPError {
	code := http.StatusUnprocessableEntity
	switch Classify(err) {
	case KindSetup:
		code = http.StatusServiceUnavailable
	case KindWriteConflict:
		code = http.StatusConflict
	case KindUnknown:
		code = http.StatusInternalServerError
	}
	return httperror.NewHTTPError(code, err.Error()).
		AddMetaValue("kind", Classify(err)).
		AddMetaValue("source_id", sourceID)
}
