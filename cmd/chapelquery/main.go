// Command chapelquery is a minimal host for a progdb.Context: it feeds
// file text into the engine revision by revision, as described by a YAML
// manifest, drives the Read/Parse queries over the files each revision
// names, and prints the resulting diagnostics. It exists to give the
// engine, the interner, and the identifier builder a realistic end-to-end
// caller.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shubhamkmr04/chapel/progdb"
	"github.com/shubhamkmr04/chapel/report"
)

var flagVerbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "chapelquery <manifest.yaml>",
	Short:         "Drive a program database through a sequence of revisions",
	Long:          "chapelquery feeds file text into an incremental query engine revision by revision, as described by a YAML manifest, and reports which queries ran and what they found.",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "trace query begin/end/reuse events to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(manifestPath)

	var tracer progdb.Tracer
	if flagVerbose {
		tracer = stderrTracer{w: os.Stderr}
	}
	ctx := progdb.NewContext(tracer)
	q := NewQueries()

	for i, rev := range manifest.Revisions {
		if err := applyRevision(ctx, baseDir, rev); err != nil {
			return fmt.Errorf("revision %d: %w", i, err)
		}
		ctx.AdvanceToNextRevision(rev.PrepareToGC)

		for _, path := range rev.Parse {
			progdb.Query(ctx, q.Parse, path)
			// progdb.Errors, not the returned Result's own Errors field:
			// the latter only ever holds errors the builder itself raised,
			// while a file that failed Read's check surfaces its error
			// here, propagated up as Parse's dependency.
			printResult(cmd, i, path, progdb.Errors(q.Parse, path))
		}

		if rev.PrepareToGC {
			ctx.CollectGarbage()
		}
	}
	return nil
}

func applyRevision(ctx *progdb.Context, baseDir string, rev RevisionSpec) error {
	for _, fs := range rev.Files {
		resolved, err := fs.Resolve(baseDir)
		if err != nil {
			return err
		}
		for _, f := range resolved {
			ctx.SetFileText(f.Path, f.Text)
		}
	}
	for _, mp := range rev.ModulePaths {
		ctx.SetFilePathForModuleName(mp.Module, mp.Path)
	}
	return nil
}

func printResult(cmd *cobra.Command, revision int, path string, errs []error) {
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintf(out, "revision %d: %s: ok\n", revision, path)
		return
	}
	for _, e := range errs {
		if re, ok := e.(*report.Error); ok {
			fmt.Fprintf(out, "revision %d: %s\n", revision, report.Render(re))
			continue
		}
		fmt.Fprintf(out, "revision %d: %s: %s\n", revision, path, e)
	}
}
