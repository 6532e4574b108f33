package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elmatools/acrossrec/internal/summary"
	"github.com/elmatools/acrossrec/pkg/rec"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode one replay and print its summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := decodeFile(args[0])
			if err != nil {
				return err
			}

			var v any = summary.Summarize(rp)
			if full {
				v = rp
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print every frame and event instead of the summary")
	return cmd
}

// decodeFile reads and decodes path, logging the outcome.
func decodeFile(path string) (*rec.Replay, error) {
	log := current.Logger
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rp, err := rec.Decode(b)
	if err != nil {
		log.Error("Failed to decode replay", "path", path, "error", err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("Decoded replay", "path", path, "frames", rp.FrameCount, "events", len(rp.Events))
	return rp, nil
}
