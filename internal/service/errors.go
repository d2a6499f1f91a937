package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is returned before any network call when a draft or a
// message is incomplete. Fields maps the input field name to a
// user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UploadError names the image whose upload aborted the submission.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Failed to upload %s. Error: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// InsertError means every upload succeeded but the record write did not.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert failed: %v", e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
