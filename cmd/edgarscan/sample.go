package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fwojciec/edgarscan"
	"github.com/fwojciec/edgarscan/fs"
	"github.com/fwojciec/edgarscan/sgml"
)

// Run executes the sample-loans command.
func (c *SampleLoansCmd) Run(deps *Dependencies) error {
	keys, err := deps.Results.SampleLoanFilings(deps.Ctx, deps.FileType, c.Count)
	if err != nil {
		return deps.fail(err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(deps.Stdout, "No loan filings found. Use 'edgarscan find-loans' first.")
		return nil
	}

	writer := &fs.MarkdownWriter{Sanitizer: deps.Sanitizer, Converter: deps.Converter}

	var exported, rendered int
	for _, key := range keys {
		extractor := &sgml.Extractor{
			Opener:    deps.Opener,
			Dir:       filepath.Join(c.Out, sampleDirName(key)),
			OnWarning: warnFunc(deps),
		}
		paths, err := extractor.Extract(deps.Ctx, key, deps.Layout.Path(key))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", key, errorText(err))
			continue
		}
		exported++

		for _, p := range paths {
			md, err := writer.WriteMarkdown(key, p)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", filepath.Base(p), errorText(err))
				continue
			}
			if md != "" {
				rendered++
			}
		}
	}

	fmt.Fprintf(deps.Stdout, "Exported %d filings (%d markdown documents) to %s\n", exported, rendered, c.Out)
	return nil
}

// sampleDirName returns the output directory name of one exported filing.
func sampleDirName(key edgarscan.FilingKey) string {
	return strings.ReplaceAll(key.CIK+"_"+key.FileType+"_"+key.Date, "/", "-")
}
