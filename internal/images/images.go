// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package images downloads item images from a crawl manifest.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dkoval/itemharvest/internal/httputil"
	"github.com/dkoval/itemharvest/internal/persist"
	"github.com/dkoval/itemharvest/pkg/types"
)

// imageExt is the filename extension of saved images.
const imageExt = ".png"

// BatchResult holds the outcome of a manifest download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of manifest entries processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Downloader fetches manifest images into a directory.
type Downloader struct {
	client *http.Client
	dir    string
	delay  time.Duration
}

// NewDownloader builds a downloader writing into dir. delay paces
// consecutive downloads.
func NewDownloader(client *http.Client, dir string, delay time.Duration) *Downloader {
	return &Downloader{client: client, dir: dir, delay: delay}
}

// DownloadAll walks the manifest and fetches every image with an address.
// Entries without an address and entries whose file already exists are
// skipped; a failing download is reported on w and skipped — one broken
// asset must not stop the batch.
func (d *Downloader) DownloadAll(ctx context.Context, manifest []types.ImageRef, w io.Writer) (BatchResult, error) {
	if err := persist.EnsureDirectory(d.dir); err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for i, ref := range manifest {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if ref.URL == "" {
			result.Skipped++
			continue
		}

		path := filepath.Join(d.dir, ref.ID+imageExt)
		if exists(path) {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", ref.ID)
			result.Skipped++
			continue
		}

		if i > 0 && d.delay > 0 {
			time.Sleep(d.delay)
		}

		if err := d.download(ctx, ref.URL, path); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", ref.ID, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "saved:   %s\n", ref.ID)
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nImage summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// download fetches one image and writes it atomically.
func (d *Downloader) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, d.client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	return persist.WriteBinary(path, data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
