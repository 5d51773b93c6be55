package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/umapsgd/checkpoint"
)

// checkpointCommand creates the checkpoint command group.
func (c *CLI) checkpointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect and export layout checkpoints",
	}
	cmd.AddCommand(c.checkpointListCommand())
	cmd.AddCommand(c.checkpointExportCommand())
	return cmd
}

func (c *CLI) checkpointListCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list [location]",
		Short: "List checkpoints under a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheckpointList(cmd.Context(), args[0], prefix)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "run", "checkpoint name prefix")
	return cmd
}

func (c *CLI) runCheckpointList(ctx context.Context, uri, prefix string) error {
	store, err := openStore(ctx, uri)
	if err != nil {
		return err
	}
	entries, err := checkpoint.List(ctx, store, prefix)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EPOCH\tNAME\tBYTES\tCOMPRESSION\tCREATED")
	for _, e := range entries {
		created := "-"
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Format(time.RFC3339)
		}
		comp := e.Compression
		if comp == "" {
			comp = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", e.Epoch, e.Name, e.Bytes, comp, created)
	}
	return tw.Flush()
}

func (c *CLI) checkpointExportCommand() *cobra.Command {
	var (
		prefix string
		epoch  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [location]",
		Short: "Write a checkpoint as CSV",
		Long: `Write a checkpoint as CSV.

Exports the latest checkpoint under --prefix, or the one taken after --epoch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("epoch") {
				epoch = -1
			}
			return c.runCheckpointExport(cmd.Context(), args[0], prefix, epoch, output)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "run", "checkpoint name prefix")
	cmd.Flags().IntVar(&epoch, "epoch", 0, "epoch to export (default: latest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV (default: stdout)")
	return cmd
}

func (c *CLI) runCheckpointExport(ctx context.Context, uri, prefix string, epoch int, output string) error {
	store, err := openStore(ctx, uri)
	if err != nil {
		return err
	}

	var snap *checkpoint.Snapshot
	if epoch < 0 {
		snap, err = checkpoint.Latest(ctx, store, prefix)
	} else {
		snap, err = checkpoint.Load(ctx, store, checkpoint.Name(prefix, epoch))
	}
	if err != nil {
		return err
	}

	emb, err := snap.Embedding()
	if err != nil {
		return err
	}
	if output == "" {
		return writeEmbedding(c.Out, emb)
	}
	if err := writeEmbeddingFile(ctx, output, emb, nil); err != nil {
		return err
	}
	c.Logger.Info("checkpoint exported", "epoch", snap.Epoch, "output", output)
	return nil
}
