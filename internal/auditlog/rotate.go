package auditlog

import (
	"fmt"
	"os"
)

const (
	// RotateThreshold is the size at which the active log is rotated.
	RotateThreshold = 10 * 1024 * 1024
	// MaxRotated is the number of rotated files kept (.1 through .5).
	MaxRotated = 5
)

// rotateIfNeeded shifts audit.log -> audit.log.1 -> ... -> audit.log.5 when
// the active file exceeds the threshold, discarding the oldest.
func rotateIfNeeded(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat audit log: %w", err)
	}
	if info.Size() <= RotateThreshold {
		return nil
	}

	// Oldest first: .5 is discarded by the .4 -> .5 rename.
	for n := MaxRotated - 1; n >= 1; n-- {
		src := fmt.Sprintf("%s.%d", path, n)
		dst := fmt.Sprintf("%s.%d", path, n+1)
		if _, err := os.Stat(src); err == nil {
			if err := os.Rename(src, dst); err != nil {
				return fmt.Errorf("rotate %s: %w", src, err)
			}
		}
	}

	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate active log: %w", err)
	}
	return nil
}
