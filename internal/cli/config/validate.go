package config

import (
	"fmt"

	"github.com/leapstack-labs/modelspec/pkg/validate"
)

// ValidOutputs lists the accepted output formats.
var ValidOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := validate.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("invalid policy in %s: %w", ConfigFileName, err)
	}

	valid := false
	for _, o := range ValidOutputs {
		if c.OutputFormat == o {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format %q (expected one of auto, text, markdown, json)", c.OutputFormat)
	}

	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}

// ValidationPolicy returns the parsed validation policy.
func (c *Config) ValidationPolicy() validate.Policy {
	p, err := validate.ParsePolicy(c.Policy)
	if err != nil {
		return validate.Accumulate
	}
	return p
}
