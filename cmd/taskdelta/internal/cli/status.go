package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdelta/internal/probe"
	"taskdelta/internal/store"
	"taskdelta/pkg/config"
	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/recompile"
)

var statusFlags struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source changes since the last recorded execution",
	Long: `Compares the current source tree against the fingerprints recorded
after the last execution and lists added, modified and removed files.

The --json flag outputs the result as JSON for scripting.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the JSON output format for taskdelta status.
type StatusOutput struct {
	Changed  bool     `json:"changed"`
	Added    []string `json:"added,omitempty"`
	Modified []string `json:"modified,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewJSONStore(root)
	if !st.Exists() {
		if statusFlags.json {
			return outputJSON(StatusOutput{Changed: true, Error: "no state found"})
		}
		fmt.Println("No state found. Run 'taskdelta record' to create initial state.")
		return nil
	}

	changes, err := sourceChanges(cmd.Context(), cfg, root, st)
	if err != nil {
		return err
	}

	if statusFlags.json {
		out := StatusOutput{Changed: len(changes) > 0}
		for _, c := range changes {
			switch c.Kind {
			case recompile.ChangeAdded:
				out.Added = append(out.Added, c.RelativePath)
			case recompile.ChangeModified:
				out.Modified = append(out.Modified, c.RelativePath)
			case recompile.ChangeRemoved:
				out.Removed = append(out.Removed, c.RelativePath)
			}
		}
		return outputJSON(out)
	}

	if len(changes) == 0 {
		fmt.Println("Source tree is unchanged")
		return nil
	}

	fmt.Printf("Changed files (%d):\n", len(changes))
	for _, c := range changes {
		marker := "~"
		switch c.Kind {
		case recompile.ChangeAdded:
			marker = "+"
		case recompile.ChangeRemoved:
			marker = "-"
		}
		fmt.Printf("  %s %s\n", marker, c.RelativePath)
	}
	return nil
}

// sourceChanges probes the source tree and diffs it against the recorded
// source fingerprints for the selected task.
func sourceChanges(ctx context.Context, cfg *config.Config, root string, st store.Store) ([]recompile.FileChange, error) {
	state, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	sourceDir := filepath.Join(root, cfg.Source.Dir)
	prober := probe.New(probe.Config{IgnoreDirs: cfg.IgnoreDirs})
	current, err := prober.Probe(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to probe source tree: %w", err)
	}

	var previous fingerprint.Collection
	if exec, ok := state.Execution(globalFlags.task); ok {
		previous = exec.SourceFingerprints
	}
	return recompile.ChangesBetween(previous, sourceDir, current), nil
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
