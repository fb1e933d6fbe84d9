// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"

	"github.com/charmbracelet/log"
)

// Publisher moves a freshly compiled image to its version-qualified name.
type Publisher struct {
	logger *log.Logger
	rename func(oldpath, newpath string) error
}

// NewPublisher creates a Publisher that logs to logger.
func NewPublisher(logger *log.Logger) *Publisher {
	return &Publisher{logger: logger, rename: os.Rename}
}

// Publish renames compiled to target and checks that target exists afterwards.
// On success compiled no longer exists.
func (p *Publisher) Publish(compiled, target string) error {
	if !isFile(compiled) {
		return newError(ErrArtifactNotProduced, PhasePublishing, compiled, nil)
	}
	p.logger.Info("compiled image found", "path", compiled)

	if err := p.rename(compiled, target); err != nil {
		return newError(ErrPublishVerificationFailed, PhasePublishing, target, err)
	}
	// A successful rename is not enough on its own; the target must be there.
	if !isFile(target) {
		p.logger.Error("renamed image is missing", "path", target)
		return newError(ErrPublishVerificationFailed, PhasePublishing, target, nil)
	}

	p.logger.Info("published image", "path", target)
	return nil
}
