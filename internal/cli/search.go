package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ruralpay/invoices/internal/search"
	"github.com/spf13/cobra"
)

type SearchOptions struct {
	*RootOptions
	Path     string
	Debounce time.Duration
}

func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter the invoice listing as you type",
		Long: `Read search text from stdin, one line per keystroke burst, and print the
invoice listing each time typing pauses.

Example:
  dashctl search --url http://localhost:8080 --token $TOKEN
  printf 'd\nde\ndelba\n' | dashctl search --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("debounce") {
				opts.Debounce = opts.client.SearchDebounce
			}
			return runSearch(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "/dashboard/invoices", "listing path")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", search.DefaultWait, "pause before the listing is fetched (DASHCTL_SEARCH_DEBOUNCE)")

	return cmd
}

// listingPrinter is the search Navigator: every replace fetches the new
// location and prints it.
type listingPrinter struct {
	ctx    context.Context
	client *Client
	format string

	mu  sync.Mutex
	out io.Writer
	err error
}

func (p *listingPrinter) Replace(target string) {
	listing, body, err := p.client.FetchListing(p.ctx, target)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return
	}
	if p.format == "json" {
		fmt.Fprintln(p.out, string(body))
		return
	}
	RenderListing(p.out, listing)
}

func (p *listingPrinter) firstErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func runSearch(ctx context.Context, opts *SearchOptions, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	printer := &listingPrinter{
		ctx:    ctx,
		client: NewClient(opts.BaseURL, opts.Token, opts.Timeout),
		format: opts.Format,
		out:    out,
	}

	syncer, err := search.NewSync(opts.Path, printer, opts.Debounce)
	if err != nil {
		return err
	}
	defer syncer.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		syncer.OnInputChange(scanner.Text())
		if err := printer.firstErr(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	syncer.Flush()
	return printer.firstErr()
}
