package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "shortclipper <url>",
		Short:        "Turn a long video into short vertical highlight clips",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().Int("clips", 5, "Number of clips to produce (1-10)")
	root.Flags().String("out", "output", "Output directory")
	root.Flags().Bool("captions", true, "Burn word-level captions into each clip")
	root.Flags().Bool("hook", true, "Synthesize a spoken hook over each clip's start")

	// Hidden tuning flags (internal)
	root.Flags().Int("min", 15, "Min clip duration seconds")
	root.Flags().Int("max", 90, "Max clip duration seconds")
	root.Flags().Float64("temperature", 1.0, "Model temperature")
	root.Flags().String("watermark", "", "Watermark text overlay")
	root.Flags().Bool("continue-on-clip-error", false, "Skip failed clips instead of aborting")
	root.Flags().Bool("keep-sources", false, "Keep downloaded source and intermediates")
	for _, f := range []string{"min", "max", "temperature", "watermark", "continue-on-clip-error", "keep-sources"} {
		_ = root.Flags().MarkHidden(f)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
