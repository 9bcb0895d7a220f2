package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/events"
	"github.com/ziadkadry99/riskdesk/internal/progress"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file.json | pattern]...",
	Short: "Import risk events from JSON files",
	Long: `Reads JSON arrays of events (the eventos_risco export format), validates
every record and loads them in a single transaction. Arguments may be file
paths or glob patterns such as 'data/**/*.json'. Nothing is written if any
record is invalid or already exists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Bool("quiet", false, "do not show a progress bar")
	rootCmd.AddCommand(seedCmd)
}

// seedFile is one decoded input file.
type seedFile struct {
	path   string
	events []events.Event
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	quiet, _ := cmd.Flags().GetBool("quiet")

	paths, err := expandSeedArgs(args)
	if err != nil {
		return err
	}

	var (
		files []seedFile
		all   []events.Event
	)
	for _, path := range paths {
		list, err := decodeSeedFile(path)
		if err != nil {
			return err
		}
		files = append(files, seedFile{path: path, events: list})
		all = append(all, list...)
	}
	if len(all) == 0 {
		fmt.Println("No events to import.")
		return nil
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var onProgress func(int)
	var reporter progress.Reporter
	if !quiet {
		reporter = progress.NewReporter(os.Stderr, "Importing events")
		reporter.Start(len(all))
		onProgress = reporter.Update
	}

	err = a.events.InsertMany(ctx, all, onProgress)
	if reporter != nil {
		reporter.Finish()
	}
	if err != nil {
		return fmt.Errorf("importing events: %w", err)
	}

	actor := currentUser()
	for _, f := range files {
		source := filepath.Base(f.path)
		entry := audit.ImportEntry(source, len(f.events), audit.ActorUser, actor)
		if err := a.audit.Log(ctx, entry); err != nil {
			a.logger.Warn("audit log failed", zap.String("source", source), zap.Error(err))
		}
	}

	fmt.Printf("Imported %s events from %d file(s) into %s\n",
		humanize.Comma(int64(len(all))), len(files), a.cfg.DatabasePath)
	return nil
}

// expandSeedArgs resolves glob patterns to files, keeping argument order and
// dropping duplicates. A pattern that matches nothing is an error.
func expandSeedArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

func decodeSeedFile(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	list, err := events.DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}
