/*
   gsx error kinds.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package gserr defines the error kinds the core surfaces to a host: the four
// that gate machine construction/snapshot/disk operations, and the ones that
// are logged and swallowed unless they escalate to Fatal.
package gserr

import "errors"

// Kind classifies an error returned across the core/host boundary.
type Kind int

const (
	MountFailed Kind = iota
	SaveFailed
	CorruptedSnapshot
	UnsupportedSnapshotVersion
	AllocationFailed
	UnmappedMemory
	UnimplementedOpcode
	DeviceProtocolViolation
)

func (k Kind) String() string {
	switch k {
	case MountFailed:
		return "MountFailed"
	case SaveFailed:
		return "SaveFailed"
	case CorruptedSnapshot:
		return "CorruptedSnapshot"
	case UnsupportedSnapshotVersion:
		return "UnsupportedSnapshotVersion"
	case AllocationFailed:
		return "AllocationFailed"
	case UnmappedMemory:
		return "UnmappedMemory"
	case UnimplementedOpcode:
		return "UnimplementedOpcode"
	case DeviceProtocolViolation:
		return "DeviceProtocolViolation"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a human message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a Kind to an underlying cause.
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Fatal kinds transition the machine to Failed and are never recoverable
// mid-step; a host must tear down and reconstruct the machine afterward.
func (k Kind) Fatal() bool {
	switch k {
	case AllocationFailed, CorruptedSnapshot:
		return true
	default:
		return false
	}
}
