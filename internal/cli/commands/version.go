package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display modelspec version and supported document protocols.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "modelspec v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Protocols: %s, %s\n", spec.DefinitionProtocolVersion, spec.EnvironmentProtocolVersion)
		},
	}
}
