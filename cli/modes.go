package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/firehose/motion"
)

// NewModesCommand lists the motion modes
func NewModesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List motion modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			for i, name := range motion.Default().Names() {
				marker := " "
				if name == cfg.Engine.Mode {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", marker, (i+1)%10, name)
			}
			return nil
		},
	}
}
