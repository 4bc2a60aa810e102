package cmd

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/textclean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file.txt]",
	Short: "Clean extracted lesson text (reads stdin without a file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}

		cleaned := textclean.Clean(string(raw))
		fmt.Fprintln(cmd.OutOrStdout(), cleaned)
		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d -> %d characters\n",
				utf8.RuneCount(raw), utf8.RuneCountInString(cleaned))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().Bool("stats", false, "Print character counts to stderr")
}
