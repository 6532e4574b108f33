package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/elmatools/acrossrec/pkg/rec"
	"github.com/spf13/cobra"
)

func newReencodeCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "reencode <in> <out>",
		Short: "Decode a replay, encode it again and compare",
		Long: `Decode in, encode the result to out and report whether out matches in
byte for byte up to and including the end marker. Trailing bytes after the
end marker are not carried over.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			original, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", in, err)
			}
			rp, err := rec.Decode(original)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			encoded, err := rec.Encode(rp)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			if err := os.WriteFile(out, encoded, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			w := cmd.OutOrStdout()
			diff := firstDifference(original, encoded)
			if diff < 0 {
				fmt.Fprintf(w, "%s -> %s identical (%d bytes)\n", in, out, len(encoded))
				current.Logger.Info("Re-encoded replay", "in", in, "out", out, "bytes", len(encoded))
				return nil
			}
			fmt.Fprintf(w, "%s -> %s differs at byte %d\n", in, out, diff)
			current.Logger.Warn("Re-encoded replay differs", "in", in, "out", out, "offset", diff)
			if strict {
				return fmt.Errorf("re-encoded %s differs at byte %d", in, diff)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the output differs")
	return cmd
}

// firstDifference compares encoded against the matching prefix of original
// and returns the first differing offset, or -1.
func firstDifference(original, encoded []byte) int {
	if len(original) >= len(encoded) && bytes.Equal(original[:len(encoded)], encoded) {
		return -1
	}
	n := min(len(original), len(encoded))
	for i := 0; i < n; i++ {
		if original[i] != encoded[i] {
			return i
		}
	}
	return n
}
