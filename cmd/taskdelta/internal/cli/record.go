package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdelta/internal/log"
	"taskdelta/internal/probe"
	"taskdelta/internal/store"
	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/outputs"
	"taskdelta/pkg/snapshot"
)

var recordFlags struct {
	mappingFile string
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the current source and output state for a task",
	Long: `Probes the source and output trees and stores their fingerprints as the
task's recorded execution state. Output entries are filtered against the
previously recorded fingerprints first, so foreign files that appeared in
the output directory between runs are not adopted as outputs.

A source/class mapping produced by the compiler can be imported with
--mapping; it is required for incremental recompilation planning.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordFlags.mappingFile, "mapping", "",
		"JSON file mapping relative source paths to declared class names")

	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.Component("record")

	st := store.NewJSONStore(root)
	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	prober := probe.New(probe.Config{IgnoreDirs: cfg.IgnoreDirs})
	ctx := cmd.Context()

	sourceDir := filepath.Join(root, cfg.Source.Dir)
	sourceSnapshot, err := prober.Probe(ctx, sourceDir)
	if err != nil {
		return fmt.Errorf("failed to probe source tree: %w", err)
	}

	outputDir := filepath.Join(root, cfg.Output.Dir)
	outputSnapshot, err := prober.Probe(ctx, outputDir)
	if err != nil {
		return fmt.Errorf("failed to probe output tree: %w", err)
	}

	exec, ok := state.Execution(globalFlags.task)
	if !ok {
		exec = &store.Execution{TaskID: globalFlags.task}
	}

	// Keep only entries already known as outputs; a first record adopts
	// the whole output tree.
	var outputRoots []snapshot.Snapshot
	if exec.OutputFingerprints.Len() == 0 {
		outputRoots = []snapshot.Snapshot{outputSnapshot}
	} else {
		outputRoots = outputs.FilterBefore(exec.OutputFingerprints, outputSnapshot)
	}

	exec.SourceFingerprints = fingerprint.FromSnapshots(sourceSnapshot)
	exec.OutputFingerprints = fingerprint.FromSnapshots(outputRoots...)

	if recordFlags.mappingFile != "" {
		mapping, err := readMappingFile(recordFlags.mappingFile)
		if err != nil {
			return err
		}
		exec.SourceClasses = mapping
	}

	state.Put(exec)
	if err := st.Save(state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	logger.Info("state recorded",
		"task", globalFlags.task,
		"source_entries", exec.SourceFingerprints.Len(),
		"output_entries", exec.OutputFingerprints.Len())
	fmt.Printf("Recorded %d source and %d output entries for task %q\n",
		exec.SourceFingerprints.Len(), exec.OutputFingerprints.Len(), globalFlags.task)
	return nil
}

// readMappingFile reads a JSON object of relative source path to class
// names.
func readMappingFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var mapping map[string][]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	return mapping, nil
}
