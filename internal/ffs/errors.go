package ffs

import (
	"fmt"

	"github.com/vk/dxecore/internal/efierr"
)

// Error kinds. Each wraps the firmware status a caller should report.
var (
	ErrInvalidHeader = fmt.Errorf("ffs: invalid header: %w", efierr.VolumeCorrupted)
	ErrChecksum      = fmt.Errorf("ffs: checksum mismatch: %w", efierr.VolumeCorrupted)
	ErrTruncated     = fmt.Errorf("ffs: truncated: %w", efierr.VolumeCorrupted)
	ErrTooDeep       = fmt.Errorf("ffs: encapsulation nested too deeply: %w", efierr.VolumeCorrupted)
	ErrUnsupported   = fmt.Errorf("ffs: unsupported encapsulation: %w", efierr.Unsupported)
)

// Error describes a malformed volume, file or section.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
