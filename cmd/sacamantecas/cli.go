package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/ini"
	"github.com/DervishD/sacamantecas/skim"
)

// CLI defines the command-line interface structure for Kong. Skim is
// the default command, so sources can be passed without naming it.
type CLI struct {
	Profiles string           `short:"p" default:"sacamantecas.ini" help:"INI file with the extraction profiles."`
	Journal  string           `help:"SQLite journal path. Defaults to $SACAMANTECAS_JOURNAL or ~/.sacamantecas/journal.db."`
	Verbose  bool             `short:"v" help:"Log every operation, not just warnings."`
	Quiet    bool             `short:"q" help:"Log errors only."`
	LogFile  string           `help:"Append logs to this file instead of stderr."`
	Version  kong.VersionFlag `help:"Print version information and quit."`

	Skim     SkimCmd     `cmd:"" default:"withargs" help:"Extract metadata from the given sources."`
	Check    CheckCmd    `cmd:"" help:"Validate the extraction profiles and list them."`
	Discover DiscoverCmd `cmd:"" help:"Walk a site's sitemaps and list the URLs matching a profile."`
	Runs     RunsCmd     `cmd:"" help:"List past runs recorded in the journal."`
}

// SkimCmd retrieves each source's pages and extracts their metadata.
type SkimCmd struct {
	Sources     []string      `arg:"" optional:"" help:"URLs, .txt URL lists or .xlsx spreadsheets to process."`
	Resume      bool          `help:"Skip URIs already skimmed successfully by an earlier run."`
	Concurrency int           `short:"c" default:"1" help:"How many URIs to retrieve concurrently."`
	Timeout     time.Duration `default:"20s" help:"Per-retrieval timeout."`
	Rate        float64       `help:"Per-host request rate limit, in requests per second. Zero disables it."`
	Render      bool          `help:"Render pages in a headless browser, for JavaScript catalogues."`
	Dump        bool          `help:"Dump every retrieved page to a local file, for profile authoring."`
}

// CheckCmd loads the profiles file and prints what it found.
type CheckCmd struct{}

// DiscoverCmd walks a site's sitemaps and prints the discovered URLs.
type DiscoverCmd struct {
	Site  string `arg:"" help:"Site URL whose sitemaps to walk."`
	All   bool   `help:"Print every discovered URL, not just those matching a profile."`
	Limit int    `help:"Stop after this many URLs. Zero means no limit."`
}

// RunsCmd lists past runs recorded in the journal.
type RunsCmd struct {
	Limit int `default:"20" help:"How many runs to list, newest first."`
}

// Dependencies holds all services and configuration needed by commands.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Registry *ini.Registry
	Skimmer  *skim.Skimmer
	Journal  sacamantecas.Journal
	Sitemaps sacamantecas.SitemapService
}
