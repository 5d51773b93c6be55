package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/hupe1980/umapsgd"
)

// fitABCommand creates the fit-ab command.
func (c *CLI) fitABCommand() *cobra.Command {
	var spread, minDist float64

	cmd := &cobra.Command{
		Use:   "fit-ab",
		Short: "Fit the a/b curve parameters",
		Long: `Fit the a and b parameters of the membership curve 1/(1+a*d^(2b)) to
the target curve with the given spread and min_dist. The result is printed as
a [params] TOML table for use with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, b, err := umapsgd.FindABParams(spread, minDist)
			if err != nil {
				return err
			}
			return toml.NewEncoder(c.Out).Encode(map[string]any{
				"params": map[string]float64{"a": a, "b": b},
			})
		},
	}
	cmd.Flags().Float64Var(&spread, "spread", 1.0, "effective scale of embedded points")
	cmd.Flags().Float64Var(&minDist, "min-dist", 0.1, "minimum distance between embedded points")
	return cmd
}
