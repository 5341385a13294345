package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"site-cleaner/feature/cleanup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cleanDest     string
	cleanKeep     []string
	cleanManifest string
	cleanSource   string
	cleanDryRun   bool
	cleanYes      bool
	cleanJSON     bool
)

// cleanCmd reconciles a destination directory with the next build's output list.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove files the next build will not produce",
	Long: `Compare the destination directory with the files listed by a manifest source
and remove everything else. Paths matching a keep pattern are never touched.

Examples:
  # Report what would be removed
  clean --dry-run

  # Clean with interactive confirmation
  clean --dest public --manifest public.manifest.json

  # Keep CNAME as well as VCS metadata, non-interactive
  clean --keep .git --keep CNAME --yes

  # Use the objects published under a bucket prefix as the file list
  clean --source storage --yes`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanDest, "dest", "", "Destination directory (default from CLEANER_DESTINATION)")
	cleanCmd.Flags().StringSliceVar(&cleanKeep, "keep", nil, "Keep pattern, repeatable (replaces CLEANER_KEEP_FILES)")
	cleanCmd.Flags().StringVar(&cleanManifest, "manifest", "", "Manifest file or object key")
	cleanCmd.Flags().StringVar(&cleanSource, "source", "", "Manifest source: file, object, storage or database")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Only report, never remove")
	cleanCmd.Flags().BoolVar(&cleanYes, "yes", false, "Auto-confirm removal (non-interactive)")
	cleanCmd.Flags().BoolVar(&cleanJSON, "json", false, "Print the plan as JSON on stdout")

	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	if cleanManifest != "" {
		rt.cfg.Cleaner.Manifest = cleanManifest
	}
	// The local operator may clean any directory; the allow-list guards API callers.
	if cleanDest != "" {
		rt.cfg.Cleaner.Destination = cleanDest
	}

	req := cleanup.Request{
		Source: cleanSource,
		Origin: "cli",
	}
	if cmd.Flags().Changed("keep") {
		req.Keep = cleanKeep
		if req.Keep == nil {
			req.Keep = []string{}
		}
	}

	source := req.Source
	if source == "" {
		source = rt.cfg.Cleaner.Source
	}
	if source == "database" {
		rt.checkSiteFiles()
	}

	fsys := afero.NewOsFs()
	registry := cleanup.NewRegistry(fsys, rt.cfg.Cleaner, rt.client, rt.cfg.Storage.Bucket, rt.db)
	svc := cleanup.NewService(fsys, registry, nil, rt.cfg.Cleaner, rt.log, rt.db)

	// Step 1: Plan (always runs)
	result, err := svc.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to plan cleanup: %w", err)
	}

	if cleanJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		fmt.Println(string(out))
	}

	// Step 2: Report
	printCleanupReport(rt.log, result)

	if result.Plan.Empty() {
		rt.log.Info("Destination is clean, nothing to remove.")
		return nil
	}

	if cleanDryRun {
		req.DryRun = true
		if _, err := svc.ApplyPlan(ctx, req, result.Plan); err != nil {
			return fmt.Errorf("failed to record dry run: %w", err)
		}
		rt.log.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 3: Confirm and apply
	if !confirmRemoval() {
		rt.log.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Remove exactly what was confirmed, even if the tree changed since
	applied, err := svc.ApplyPlan(ctx, req, result.Plan)
	if err != nil {
		return fmt.Errorf("failed to apply cleanup: %w", err)
	}

	rt.log.Info("Successfully removed obsolete paths",
		zap.Int("count", applied.Removed),
		zap.String("reclaimed", humanize.Bytes(uint64(applied.Reclaimed))),
	)
	return nil
}

// printCleanupReport prints a formatted cleanup report using logger.
func printCleanupReport(l *zap.Logger, result *cleanup.Result) {
	plan := result.Plan
	s := plan.Summary

	l.Info("Cleanup report",
		zap.String("root", plan.Root),
		zap.String("source", result.Source),
		zap.Int("existing", s.Existing),
		zap.Int("kept", s.Kept),
		zap.Int("desired_files", s.DesiredFiles),
		zap.Int("desired_dirs", s.DesiredDirs),
		zap.Int("type_conflicts", s.TypeConflicts),
		zap.Int("obsolete", s.Obsolete),
		zap.String("reclaimable", humanize.Bytes(uint64(s.ReclaimBytes))),
	)

	if plan.Empty() {
		return
	}

	// Show the top-level removals only; their children go with them
	roots := result.Roots
	maxShow := min(len(roots), 10)
	for _, p := range roots[:maxShow] {
		l.Info("Obsolete path", zap.String("path", p))
	}
	if len(roots) > maxShow {
		l.Info("Additional paths not shown", zap.Int("count", len(roots)-maxShow))
	}
	for _, a := range plan.Actions {
		l.Debug("Planned action",
			zap.String("type", string(a.Type)),
			zap.String("path", a.Path),
			zap.String("reason", a.Reason),
		)
	}
}

// confirmRemoval prompts the user for confirmation or uses --yes flag.
func confirmRemoval() bool {
	if cleanYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to remove the paths above: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
