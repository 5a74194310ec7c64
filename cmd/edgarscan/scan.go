package main

import (
	"fmt"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/fs"
	"github.com/fwojciec/edgarscan/scan"
	"github.com/fwojciec/edgarscan/sgml"
	edgarslog "github.com/fwojciec/edgarscan/slog"
)

// Run executes the find-event-date command.
func (c *FindEventDateCmd) Run(deps *Dependencies) error {
	return runScan(deps, &scan.EventDateScanner{Store: deps.Layout, Opener: deps.Opener}, false)
}

// Run executes the find-items command.
func (c *FindItemsCmd) Run(deps *Dependencies) error {
	return runScan(deps, &scan.ItemScanner{Store: deps.Layout, Opener: deps.Opener}, false)
}

// Run executes the find-zipcode command.
func (c *FindZipcodeCmd) Run(deps *Dependencies) error {
	return runScan(deps, &scan.ZipcodeScanner{Store: deps.Layout, Opener: deps.Opener}, false)
}

// Run executes the find-loans command.
func (c *FindLoansCmd) Run(deps *Dependencies) error {
	run, err := fs.NewRunDir(deps.TmpDir)
	if err != nil {
		return deps.fail(err)
	}
	defer run.Close()

	n, err := scan.InitLoanRows(deps.Ctx, deps.Layout, deps.Results, deps.FileType)
	if err != nil {
		return deps.fail(err)
	}
	fmt.Fprintf(deps.Stdout, "Found %d %s filings\n", n, deps.FileType)

	scanner := &scan.LoanScanner{
		Store: deps.Layout,
		Extractor: &sgml.Extractor{
			Opener:    deps.Opener,
			Dir:       run.Path,
			OnWarning: warnFunc(deps),
		},
		Matcher: deps.Matcher,
	}
	return runScan(deps, scanner, !c.NoResume)
}

func runScan(deps *Dependencies, scanner edgarscan.EntityScanner, resume bool) error {
	logger := deps.logger()
	coordinator := &scan.Coordinator{
		Store:   deps.Layout,
		Results: deps.Results,
		Logger:  logger,
		Threads: deps.Threads,
	}

	line := newProgressLine(deps.Stderr)
	summary, err := coordinator.Run(deps.Ctx, scan.Request{
		Scanner:  edgarslog.NewLoggingEntityScanner(scanner, logger),
		FileType: deps.FileType,
		Resume:   resume,
		Progress: func(p edgarscan.ScanProgress) {
			line.Update(string(scanner.Kind()), p.Completed, p.Total)
		},
	})
	line.Clear()
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "Scanned %d entities (%d skipped, %d failed), wrote %d rows\n",
		summary.Completed, summary.Skipped, summary.Failed, summary.Rows)
	return nil
}

func warnFunc(deps *Dependencies) func(edgarscan.ParseWarning) {
	logger := deps.logger()
	return func(w edgarscan.ParseWarning) {
		logger.Debug("parse warning", "filing", w.Filing.String(), "msg", w.Message)
	}
}
