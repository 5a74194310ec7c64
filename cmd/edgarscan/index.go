package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/edgarscan"
	edgarhttp "github.com/fwojciec/edgarscan/http"
)

// Run executes the download-index command.
func (c *DownloadIndexCmd) Run(deps *Dependencies) error {
	if err := requireUserAgent(deps); err != nil {
		return deps.fail(err)
	}

	paths, err := deps.IndexDownloader.DownloadIndex(deps.Ctx, deps.IndexDir, c.Since)
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "Downloaded %d index files to %s\n", len(paths), deps.IndexDir)
	return nil
}

// Run executes the build-database command.
func (c *BuildDatabaseCmd) Run(deps *Dependencies) error {
	files, err := filepath.Glob(filepath.Join(deps.IndexDir, "*.idx"))
	if err != nil {
		return deps.fail(err)
	}
	if len(files) == 0 {
		return deps.fail(edgarscan.Errorf(edgarscan.ENOTFOUND,
			"no index files in %s. Run 'edgarscan download-index' first", deps.IndexDir))
	}

	var parsed, added int
	for _, path := range files {
		entries, err := parseIndexFile(path, deps.BaseURL)
		if err != nil {
			return deps.fail(err)
		}
		n, err := deps.Index.CreateIndexEntries(deps.Ctx, entries)
		if err != nil {
			return deps.fail(err)
		}
		parsed += len(entries)
		added += n
		deps.logger().Debug("index file loaded", "path", path, "entries", len(entries), "added", n)
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d entries from %d files (%d new)\n", parsed, len(files), added)
	return nil
}

func parseIndexFile(path, baseURL string) ([]*edgarscan.IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, edgarscan.Errorf(edgarscan.ESTORAGE, "open %s: %v", path, err)
	}
	defer f.Close()
	return edgarhttp.ParseIndex(f, baseURL)
}

func requireUserAgent(deps *Dependencies) error {
	if deps.UserAgent == "" {
		return edgarscan.Errorf(edgarscan.EINVALID,
			"user agent required. Set --user-agent or EDGARSCAN_USER_AGENT to a name and contact email")
	}
	return nil
}
