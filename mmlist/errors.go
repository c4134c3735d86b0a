// Package mmlist implements the persistent, append-only, random-access
// list container described in spec.md §4.3: a generic fixed-width element
// sequence backed by a single memory-mapped file, shared by one writer and
// any number of concurrent readers.
//
// Grounded throughout on the teacher's pkg/slotcache package — the shape of
// a mapped-region-plus-header struct guarded by an in-process mutex, with
// the cross-process contract carried entirely by the count field's
// atomicity rather than by any lock the container itself takes.
package mmlist

import "errors"

// Error taxonomy from spec.md §7, one sentinel per category. RangeExceeded
// is not declared here: it belongs to compactint, the only layer that
// knows about encoding ranges.
var (
	// ErrAlreadyOpen indicates another writer already holds the file.
	ErrAlreadyOpen = errors.New("mmlist: already open")
	// ErrUnsupported indicates the host lacks 64-bit addressing.
	ErrUnsupported = errors.New("mmlist: not supported on this platform")
	// ErrInvalidArgument indicates a bad reserved-header size, bad
	// ordering policy, or negative length.
	ErrInvalidArgument = errors.New("mmlist: invalid argument")
	// ErrOutOfBounds indicates an index outside [0, count).
	ErrOutOfBounds = errors.New("mmlist: index out of bounds")
	// ErrCapacityLocked indicates a mutation was attempted after the list
	// was switched into capacity-locked mode.
	ErrCapacityLocked = errors.New("mmlist: capacity is locked")
	// ErrOrderViolation indicates an appended or updated value breaks the
	// list's configured ordering.
	ErrOrderViolation = errors.New("mmlist: value violates ordering")
	// ErrIntegerRangeOnly indicates a requested span length exceeds the
	// 32-bit span limit.
	ErrIntegerRangeOnly = errors.New("mmlist: span length exceeds 2^31-1")
	// ErrTruncated indicates a read at an index that was valid before a
	// concurrent truncation observed by this handle.
	ErrTruncated = errors.New("mmlist: index invalidated by concurrent truncation")
	// ErrOverflow indicates capacity cannot grow any further.
	ErrOverflow = errors.New("mmlist: capacity cannot grow further")
	// ErrClosed indicates an operation on an already-closed list.
	ErrClosed = errors.New("mmlist: list is closed")
	// ErrIncompatible indicates an existing file's stored data-type tag
	// does not match the tag the caller expects (spec.md §3 "Open
	// validates that the tag on disk matches the tag the caller expects").
	ErrIncompatible = errors.New("mmlist: data-type tag mismatch")
)
