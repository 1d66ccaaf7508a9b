package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/firehose/feed"
)

// IngestOptions holds ingest flags
type IngestOptions struct {
	DatabaseURL string
	Source      string
	EntryType   string
	Classifier  string
	Value       string
}

// NewIngestCommand stores text lines as feed entries
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Store one entry per line of a file or stdin",
		Long: `Ingest reads text lines and stores each as an entry for the feed poller.

Lines already stored for the same source are reported as duplicates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DatabaseURL, "db", "", "store url, overrides feed.database_url")
	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "entry source, e.g. truth_social")
	cmd.Flags().StringVar(&opts.EntryType, "type", "post", "entry type")
	cmd.Flags().StringVar(&opts.Classifier, "classifier", "", "classifier applied to every entry")
	cmd.Flags().StringVar(&opts.Value, "value", "", "classifier value")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runIngest(ctx context.Context, rootOpts *RootOptions, opts *IngestOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	log, err := rootOpts.logger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	url := cfg.Feed.DatabaseURL
	if opts.DatabaseURL != "" {
		url = opts.DatabaseURL
	}
	store, err := feed.Open(ctx, url)
	if err != nil {
		return err
	}
	defer store.Close()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	res, err := feed.ImportLines(ctx, store, in, feed.ImportOptions{
		Source:     opts.Source,
		EntryType:  opts.EntryType,
		Classifier: opts.Classifier,
		Value:      opts.Value,
	})
	if err != nil {
		return err
	}

	log.Debugw("ingest finished", "source", opts.Source, "inserted", res.Inserted, "duplicates", res.Duplicates)
	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, duplicates %d\n", res.Inserted, res.Duplicates)
	return nil
}
