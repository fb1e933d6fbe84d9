// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is where jlproject.cue is looked up. Empty means the process
	// working directory.
	WorkDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	// Load returns the merged configuration.
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
	// Source returns the file Load reads, or "" when only defaults apply.
	Source(opts LoadOptions) (string, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Source resolves the config file without reading it.
func (p *fileProvider) Source(opts LoadOptions) (string, error) {
	return resolveConfigPath(opts)
}
