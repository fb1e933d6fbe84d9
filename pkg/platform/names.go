// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFileBase is returned when a name cannot be used as a file name base
// on every supported platform.
var ErrInvalidFileBase = errors.New("invalid file name base")

// reservedDeviceNames cannot be used as a file name on Windows, with or
// without an extension.
var reservedDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsReservedDeviceName reports whether name (ignoring any extension) is a
// Windows device name.
func IsReservedDeviceName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.IndexByte(upper, '.'); idx != -1 {
		upper = upper[:idx]
	}
	return reservedDeviceNames[upper]
}

// ValidateFileBase checks that base can prefix an artifact file name on any
// host: non-empty, no path separators or reserved characters, not a device name.
func ValidateFileBase(base string) error {
	if strings.TrimSpace(base) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFileBase)
	}
	if i := strings.IndexAny(base, `/\:*?"<>|`); i != -1 {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidFileBase, base, base[i])
	}
	if IsReservedDeviceName(base) {
		return fmt.Errorf("%w: %q is a reserved device name", ErrInvalidFileBase, base)
	}
	return nil
}
