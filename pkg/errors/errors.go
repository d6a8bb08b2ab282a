// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreProfileGetNotFound    Code = "store.profile.get.not_found"
	CodeStoreProfileUpdateNotFound Code = "store.profile.update.not_found"
	CodeStoreProfileDeleteNotFound Code = "store.profile.delete.not_found"
	CodeStoreProfileCreateConflict Code = "store.profile.create.conflict"
	CodeStoreDatabaseFailure       Code = "store.database.failure"
	CodeStoreBackendUnsupported    Code = "store.backend.unsupported"
	CodeStoreInvalidInput          Code = "store.invalid_input"

	CodeCacheBackendUnavailable Code = "cache.backend.unavailable"
	CodeCacheCodecInvalid       Code = "cache.codec.invalid"
	CodeCacheBackendUnsupported Code = "cache.backend.unsupported"

	CodeInterestCatalogInvalid Code = "interest.catalog.invalid"

	CodeMatchingRequestInvalid Code = "matching.request.invalid_input"
	CodeMatchingProfileInvalid Code = "matching.profile.invalid_input"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"

	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
	CodeCLISetupFailure     Code = "cli.setup.failure"
	CodeCLIInputInvalid     Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr { return Attr{Key: key, Value: value} }

func FieldUserID(value int64) Attr { return Field("user_id", value) }

func FieldBackend(value string) Attr { return Field("backend", value) }

// New returns a coded error carrying fields.
func New(code Code, msg string, fields ...Attr) error {
	return builder(code, fields).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Wrap annotates err with code and msg. A nil err stays nil.
func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return builder(code, fields).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds fields to err, keeping its code. Uncoded errors become
// internal failures.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}
	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}
	return builder(code, fields).Wrap(err)
}

// Join combines errs into one internal failure.
func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

// CodeOf returns the innermost code in the chain of err, or "".
func CodeOf(err error) Code {
	oopsErr, ok := oops.AsOops(err)
	if err == nil || !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	default:
		return Code(fmt.Sprint(c))
	}
}

// FieldsOf returns the structured context attached along the chain of err.
func FieldsOf(err error) map[string]any {
	oopsErr, ok := oops.AsOops(err)
	if err == nil || !ok {
		return nil
	}
	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Reason is the final segment of a code, e.g. "not_found" for
// "store.profile.get.not_found".
func (c Code) Reason() string {
	raw := string(c)
	if i := strings.LastIndexByte(raw, '.'); i >= 0 && i < len(raw)-1 {
		return raw[i+1:]
	}
	return raw
}

var statusByReason = map[string]int{
	"not_found":     http.StatusNotFound,
	"conflict":      http.StatusConflict,
	"invalid":       http.StatusBadRequest,
	"invalid_input": http.StatusBadRequest,
	"invalid_value": http.StatusBadRequest,
	"unavailable":   http.StatusServiceUnavailable,
}

func IsNotFound(err error) bool { return CodeOf(err).Reason() == "not_found" }

func IsConflict(err error) bool { return CodeOf(err).Reason() == "conflict" }

func IsInvalidInput(err error) bool {
	return HTTPStatus(err) == http.StatusBadRequest
}

func IsUnavailable(err error) bool { return CodeOf(err).Reason() == "unavailable" }

// HTTPStatus maps the code of err to a response status. Unknown and
// missing codes map to 500.
func HTTPStatus(err error) int {
	if status, ok := statusByReason[CodeOf(err).Reason()]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func builder(code Code, fields []Attr) oops.OopsErrorBuilder {
	b := oops.Code(code)
	for _, f := range fields {
		if f.Key != "" {
			b = b.With(f.Key, f.Value)
		}
	}
	return b
}
