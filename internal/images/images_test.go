// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package images

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/itemharvest/pkg/types"
)

// imageServer serves fake image bytes under /img/<name> and 404 elsewhere.
func imageServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("png-bytes:" + r.URL.Path))
	}))
}

func TestDownloadAll(t *testing.T) {
	ts := imageServer()
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(ts.Client(), dir, 0)

	manifest := []types.ImageRef{
		{ID: "Boots_of_Speed", URL: ts.URL + "/img/boots.png"},
		{ID: "Never_Fetched"}, // no address: detail page was never read
		{ID: "Broken", URL: ts.URL + "/missing"},
	}

	var buf bytes.Buffer
	result, err := d.DownloadAll(context.Background(), manifest, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total())
	assert.True(t, result.HasFailures())

	data, err := os.ReadFile(filepath.Join(dir, "Boots_of_Speed.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes:/img/boots.png", string(data))

	assert.NoFileExists(t, filepath.Join(dir, "Broken.png"))
	assert.Contains(t, buf.String(), "failed:  Broken")
	assert.Contains(t, buf.String(), "Image summary: 1 downloaded, 1 skipped, 1 failed")
}

func TestDownloadAllSkipsExisting(t *testing.T) {
	ts := imageServer()
	defer ts.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "Tango.png")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0o644))

	d := NewDownloader(ts.Client(), dir, 0)
	manifest := []types.ImageRef{{ID: "Tango", URL: ts.URL + "/img/tango.png"}}

	var buf bytes.Buffer
	result, err := d.DownloadAll(context.Background(), manifest, &buf)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Downloaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, buf.String(), "skipped: Tango (already exists)")

	// The existing file is left untouched.
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestDownloadAllCancelledContext(t *testing.T) {
	ts := imageServer()
	defer ts.Close()

	d := NewDownloader(ts.Client(), t.TempDir(), 0)
	manifest := []types.ImageRef{{ID: "Tango", URL: ts.URL + "/img/tango.png"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.DownloadAll(ctx, manifest, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownloadAllCreatesDirectory(t *testing.T) {
	ts := imageServer()
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "nested", "images")
	d := NewDownloader(ts.Client(), dir, 0)

	_, err := d.DownloadAll(context.Background(), nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
