package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdelta/internal/watch"
	"taskdelta/pkg/recompile"
)

var watchFlags struct {
	debounce int
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the source tree and print coalesced change batches",
	Long: `Watches the configured source tree for file changes and prints each
debounced batch of change events as the recompilation engine would receive
them. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchFlags.debounce, "debounce", 500,
		"Debounce window in milliseconds")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Root:       filepath.Join(root, cfg.Source.Dir),
		Extensions: cfg.Source.Extensions,
		IgnoreDirs: cfg.IgnoreDirs,
		Debounce:   watchFlags.debounce,
		OnChanges: func(changes []recompile.FileChange) {
			fmt.Printf("%d changed:\n", len(changes))
			for _, c := range changes {
				fmt.Printf("  %s %s\n", c.Kind, c.RelativePath)
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(cmd.Context())
}
