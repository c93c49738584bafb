// Package efierr defines the firmware-domain status codes returned by
// component entry points, legacy drivers and the firmware parsers.
//
// A Status is a plain error value, so callers wrap it with fmt.Errorf and
// test for it with errors.Is.
package efierr

import (
	"errors"
	"fmt"
)

const errorBit = 1 << 63

// Status is a UEFI status code. Only error codes implement meaningful
// behaviour; Success is never returned as an error.
type Status uint64

// Status codes, numbered as in the UEFI specification appendix D.
const (
	Success           Status = 0
	LoadError         Status = errorBit | 1
	InvalidParameter  Status = errorBit | 2
	Unsupported       Status = errorBit | 3
	BadBufferSize     Status = errorBit | 4
	BufferTooSmall    Status = errorBit | 5
	NotReady          Status = errorBit | 6
	DeviceError       Status = errorBit | 7
	WriteProtected    Status = errorBit | 8
	OutOfResources    Status = errorBit | 9
	VolumeCorrupted   Status = errorBit | 10
	VolumeFull        Status = errorBit | 11
	NotFound          Status = errorBit | 14
	AccessDenied      Status = errorBit | 15
	Timeout           Status = errorBit | 18
	NotStarted        Status = errorBit | 19
	AlreadyStarted    Status = errorBit | 20
	Aborted           Status = errorBit | 21
	SecurityViolation Status = errorBit | 26
	CrcError          Status = errorBit | 27
)

var names = map[Status]string{
	Success:           "SUCCESS",
	LoadError:         "LOAD_ERROR",
	InvalidParameter:  "INVALID_PARAMETER",
	Unsupported:       "UNSUPPORTED",
	BadBufferSize:     "BAD_BUFFER_SIZE",
	BufferTooSmall:    "BUFFER_TOO_SMALL",
	NotReady:          "NOT_READY",
	DeviceError:       "DEVICE_ERROR",
	WriteProtected:    "WRITE_PROTECTED",
	OutOfResources:    "OUT_OF_RESOURCES",
	VolumeCorrupted:   "VOLUME_CORRUPTED",
	VolumeFull:        "VOLUME_FULL",
	NotFound:          "NOT_FOUND",
	AccessDenied:      "ACCESS_DENIED",
	Timeout:           "TIMEOUT",
	NotStarted:        "NOT_STARTED",
	AlreadyStarted:    "ALREADY_STARTED",
	Aborted:           "ABORTED",
	SecurityViolation: "SECURITY_VIOLATION",
	CrcError:          "CRC_ERROR",
}

// Error implements the error interface.
func (s Status) Error() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("EFI_STATUS(%#x)", uint64(s))
}

// IsError reports whether the high bit of the status is set.
func (s Status) IsError() bool {
	return s&errorBit != 0
}

// Errorf wraps status with a formatted message. The result matches status
// under errors.Is.
func Errorf(status Status, format string, args ...any) error {
	return fmt.Errorf("%w: %s", status, fmt.Sprintf(format, args...))
}

// StatusOf extracts the firmware status carried by err. Errors without one
// map to DeviceError, nil maps to Success.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return DeviceError
}
