package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Layout   *fs.Layout
	IndexDir string
	TmpDir   string
	BaseURL  string

	UserAgent string
	Threads   int
	FileType  string

	Index            edgarscan.IndexService
	Results          edgarscan.ResultService
	IndexDownloader  edgarscan.IndexDownloader
	FilingDownloader edgarscan.FilingDownloader
	Opener           edgarscan.ArchiveOpener
	Matcher          edgarscan.ContentMatcher
	Sanitizer        edgarscan.Sanitizer
	Converter        edgarscan.Converter
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// fail prints err the way every command reports errors and returns it.
func (d *Dependencies) fail(err error) error {
	fmt.Fprintf(d.Stderr, "error: %s\n", errorText(err))
	return err
}

// errorText returns the message of an application error, or the full text
// of any other error.
func errorText(err error) string {
	if edgarscan.ErrorCode(err) == edgarscan.EINTERNAL {
		return err.Error()
	}
	return edgarscan.ErrorMessage(err)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    kong.ConfigFlag `name:"config" env:"EDGARSCAN_CONFIG" help:"TOML file of flag defaults"`
	Database  string          `name:"database" env:"EDGARSCAN_DB" default:"${db_path}" help:"SQLite database path"`
	DataDir   string          `name:"data-dir" env:"EDGARSCAN_DATA" default:"${data_dir}" help:"Directory holding index files and filings"`
	UserAgent string          `name:"user-agent" env:"EDGARSCAN_USER_AGENT" help:"User-Agent sent to EDGAR (name and contact email)"`
	Threads   int             `short:"t" default:"0" help:"Worker limit (0 uses one per CPU for scans and 8 for downloads)"`
	FileType  string          `name:"file-type" short:"f" default:"8-K" help:"Filing type to process"`
	Rate      float64         `default:"10" help:"Maximum EDGAR requests per second"`
	Verbose   bool            `short:"v" help:"Enable debug logging"`

	DownloadIndex   DownloadIndexCmd   `cmd:"" help:"Download quarterly EDGAR master index files"`
	BuildDatabase   BuildDatabaseCmd   `cmd:"" help:"Load downloaded index files into the database"`
	DownloadFilings DownloadFilingsCmd `cmd:"" help:"Download indexed filings missing on disk"`
	FindEventDate   FindEventDateCmd   `cmd:"" help:"Record the period of report of every filing"`
	FindItems       FindItemsCmd       `cmd:"" help:"Record the reported items of every filing"`
	FindZipcode     FindZipcodeCmd     `cmd:"" help:"Record the business address state and zip code of every filing"`
	FindLoans       FindLoansCmd       `cmd:"" help:"Flag filings that contain a loan contract"`
	SampleLoans     SampleLoansCmd     `cmd:"" help:"Export random loan filings as markdown for review"`
	Version         VersionCmd         `cmd:"" help:"Print the version"`
}

// DownloadIndexCmd is the "download-index" subcommand.
type DownloadIndexCmd struct {
	Since int `default:"1994" help:"First year to download"`
}

// BuildDatabaseCmd is the "build-database" subcommand.
type BuildDatabaseCmd struct{}

// DownloadFilingsCmd is the "download-filings" subcommand.
type DownloadFilingsCmd struct{}

// FindEventDateCmd is the "find-event-date" subcommand.
type FindEventDateCmd struct{}

// FindItemsCmd is the "find-items" subcommand.
type FindItemsCmd struct{}

// FindZipcodeCmd is the "find-zipcode" subcommand.
type FindZipcodeCmd struct{}

// FindLoansCmd is the "find-loans" subcommand.
type FindLoansCmd struct {
	NoResume bool `name:"no-resume" help:"Rescan entities that already have results"`
}

// SampleLoansCmd is the "sample-loans" subcommand.
type SampleLoansCmd struct {
	Count int    `short:"n" default:"10" help:"Number of filings to export"`
	Out   string `short:"o" required:"" type:"path" help:"Output directory"`
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "edgarscan %s\n", version)
	return nil
}
