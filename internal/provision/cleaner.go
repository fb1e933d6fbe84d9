// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Cleaner removes the lock manifest and the published image so the next
// Compile starts from scratch.
type Cleaner struct {
	logger *log.Logger
	paths  []string
}

// NewCleaner creates a Cleaner for the given lock manifest and target image.
func NewCleaner(logger *log.Logger, lockManifest, targetImage string) *Cleaner {
	return &Cleaner{logger: logger, paths: []string{lockManifest, targetImage}}
}

// Clean removes each file if present. Missing files are skipped, so repeated
// calls leave the same state and return nil.
func (c *Cleaner) Clean() error {
	for _, path := range c.paths {
		removed, err := removeIfExists(path)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		if removed {
			c.logger.Info("removed", "path", path)
		}
	}
	return nil
}
