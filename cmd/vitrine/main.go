package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/softgrove/vitrine/internal/cache"
	"github.com/softgrove/vitrine/internal/catalog"
	"github.com/softgrove/vitrine/internal/config"
	"github.com/softgrove/vitrine/internal/dashboard"
	"github.com/softgrove/vitrine/internal/remote"
	"github.com/softgrove/vitrine/internal/render"
	"github.com/softgrove/vitrine/internal/viewstate"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for vitrine.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Browse  BrowseCmd        `cmd:"" default:"1" help:"Open the interactive catalog browser."`
	List    ListCmd          `cmd:"" help:"Fetch and print the catalog listing."`
	Show    ShowCmd          `cmd:"" help:"Show detail for a single object."`
}

// BrowseCmd opens the two-pane catalog browser TUI.
type BrowseCmd struct {
	API   string `help:"Catalog endpoint URL (overrides config)."`
	NoTUI bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// ListCmd prints a fresh catalog listing as plain text.
type ListCmd struct {
	API string `help:"Catalog endpoint URL (overrides config)."`
}

// ShowCmd prints the detail of one catalog object.
type ShowCmd struct {
	ID  int    `arg:"" help:"Object ID to show."`
	API string `help:"Catalog endpoint URL (overrides config)."`
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig(apiOverride string) (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/vitrine/config.yaml"),
		".vitrine.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if apiOverride != "" {
		cfg.API.BaseURL = apiOverride
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRepository wires the remote client, cache, and repository.
func buildRepository(cfg *config.Config) *catalog.Repository {
	client := remote.NewClient(cfg.API.BaseURL, remote.WithTimeout(cfg.API.Timeout))
	return catalog.NewRepository(client, cache.NewStore())
}

// objectStream abstracts catalog.Repository.Objects for testing.
type objectStream interface {
	Objects(ctx context.Context) <-chan catalog.Update
}

// fetchFresh subscribes to the listing stream and returns the first
// refreshed listing: the initial stale-or-empty emission is skipped, the
// next emission carries either the fresh listing or the refresh error.
func fetchFresh(ctx context.Context, repo objectStream) ([]catalog.Update, error) {
	updates := repo.Objects(ctx)

	var seen []catalog.Update
	for {
		select {
		case <-ctx.Done():
			return seen, ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return seen, errors.New("catalog stream closed before refresh")
			}
			if up.Err != nil {
				return seen, up.Err
			}
			seen = append(seen, up)
			if len(seen) == 2 {
				return seen, nil
			}
		}
	}
}

// Run executes the list command.
func (c *ListCmd) Run() error {
	cfg, err := loadConfig(c.API)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runList(ctx, os.Stdout, buildRepository(cfg))
}

// runList fetches a fresh listing and renders it to w.
func runList(ctx context.Context, w io.Writer, repo objectStream) error {
	seen, err := fetchFresh(ctx, repo)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return render.Listing(w, seen[len(seen)-1].Objects)
}

// Run executes the show command.
func (c *ShowCmd) Run() error {
	cfg, err := loadConfig(c.API)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runShow(ctx, os.Stdout, buildRepository(cfg), c.ID)
}

// runShow fetches a fresh listing, then resolves one object through the
// repository's lookup stream.
func runShow(ctx context.Context, w io.Writer, repo *catalog.Repository, id int) error {
	// The lookup stream never fetches on its own; populate the cache first.
	if _, err := fetchFresh(ctx, repo); err != nil {
		return fmt.Errorf("show: %w", err)
	}

	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case lk := <-repo.ObjectByID(lookupCtx, id):
		if !lk.Found {
			return fmt.Errorf("show: object %d not in catalog", id)
		}
		render.Detail(w, lk.Object)
		return nil
	}
}

// Run executes the browse command.
func (c *BrowseCmd) Run() error {
	cfg, err := loadConfig(c.API)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repo := buildRepository(cfg)

	// Plain fallback for pipes and CI.
	if c.NoTUI || cfg.UI.NoTUI || !isTTY(os.Stdout) {
		return runList(ctx, os.Stdout, repo)
	}

	listHolder := viewstate.NewListHolder(repo, viewstate.WithKeepAlive(cfg.UI.KeepAlive))
	defer listHolder.Close()
	detailHolder := viewstate.NewDetailHolder(repo)

	uiCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := dashboard.NewModel(uiCtx, listHolder, detailHolder)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("vitrine"),
		kong.Description("A terminal browser for museum catalogs."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("vitrine %s (%s) built %s", version, commit, date),
		},
	)
	if err := kctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "vitrine: %v\n", err)
		os.Exit(1)
	}
}
