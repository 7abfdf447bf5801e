package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdelta/internal/store"
	"taskdelta/pkg/recompile"
	"taskdelta/pkg/registry"
)

var planFlags struct {
	json bool
	lang string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the recompilation plan for the current source changes",
	Long: `Derives change events from the recorded source fingerprints, runs the
incremental recompilation engine against the recorded source/class mapping,
and prints the resulting plan: the source files and classes that would be
recompiled, or the full-rebuild cause when incremental narrowing is not
possible.

This is a dry run; no state is modified and no files are deleted.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planFlags.json, "json", false,
		"Output as JSON")
	planCmd.Flags().StringVar(&planFlags.lang, "lang", "java",
		fmt.Sprintf("Source language (one of: %s)", strings.Join(registry.AvailableLanguages(), ", ")))

	rootCmd.AddCommand(planCmd)
}

// PlanOutput is the JSON output format for taskdelta plan.
type PlanOutput struct {
	BuildNeeded      bool     `json:"build_needed"`
	FullRebuildCause string   `json:"full_rebuild_cause,omitempty"`
	SourcePaths      []string `json:"source_paths,omitempty"`
	ClassesToCompile []string `json:"classes_to_compile,omitempty"`
	ClassesToProcess []string `json:"classes_to_process,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewJSONStore(root)
	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	changes, err := sourceChanges(cmd.Context(), cfg, root, st)
	if err != nil {
		return err
	}

	previous := &recompile.PreviousCompilation{}
	if exec, ok := state.Execution(globalFlags.task); ok {
		previous.Fingerprints = exec.OutputFingerprints
		previous.Mapping = exec.Mapping()
		previous.TypesToReprocess = exec.TypesToReprocess
	}

	processor, ok := registry.ProcessorFor(planFlags.lang)
	if !ok {
		return fmt.Errorf("unknown language %q (available: %s)",
			planFlags.lang, strings.Join(registry.AvailableLanguages(), ", "))
	}

	provider := recompile.NewProvider(nil, processor)
	spec := provider.Provide(recompile.CurrentCompilation{Changes: changes}, previous)

	if planFlags.json {
		out := PlanOutput{
			BuildNeeded:      spec.BuildNeeded(),
			SourcePaths:      spec.SourcePathsToCompile(),
			ClassesToCompile: spec.ClassesToCompile(),
			ClassesToProcess: spec.ClassesToProcess(),
		}
		out.FullRebuildCause, _ = spec.FullRebuildCause()
		return outputJSON(out)
	}

	if cause, ok := spec.FullRebuildCause(); ok {
		fmt.Printf("Full rebuild required: %s\n", cause)
		return nil
	}
	if !spec.BuildNeeded() {
		fmt.Println("Nothing to compile")
		return nil
	}

	paths := spec.SourcePathsToCompile()
	fmt.Printf("Sources to recompile (%d):\n", len(paths))
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
	if classes := spec.ClassesToCompile(); len(classes) > 0 {
		fmt.Printf("Classes to compile (%d):\n", len(classes))
		for _, c := range classes {
			fmt.Printf("  %s\n", c)
		}
	}
	if classes := spec.ClassesToProcess(); len(classes) > 0 {
		fmt.Printf("Classes to reprocess (%d):\n", len(classes))
		for _, c := range classes {
			fmt.Printf("  %s\n", c)
		}
	}
	return nil
}
