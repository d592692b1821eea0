// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// fakeSession serves canned page snapshots keyed by address.
type fakeSession struct {
	pages   map[string]string
	visited []string
	waited  []string
	current string
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.visited = append(s.visited, url)
	if _, ok := s.pages[url]; !ok {
		return fmt.Errorf("no page at %s", url)
	}
	s.current = url
	return nil
}

func (s *fakeSession) WaitNotPresent(_ context.Context, sel string) error {
	s.waited = append(s.waited, sel)
	return nil
}

func (s *fakeSession) Document(_ context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(s.pages[s.current]))
}

func (s *fakeSession) Close() {}

const crawlIndexPage = `<html><body>
<h3><span class="mw-headline" id="Consumables">Consumables</span></h3>
<div class="itemlist">
	<div><a href="/wiki/Boots_of_Speed" title="Boots of Speed"></a><span>Boots of Speed</span></div>
	<div><a href="/wiki/Missing_Page" title="Missing Page"></a><span>Missing Page</span></div>
</div>
</body></html>`

const bootsPage = `<html><body>
<div class="infobox">
<div id="itemmainimage"><a href="/wiki/File:Boots.png"><img src="https://cdn.wiki.example.com/boots.png"></a></div>
<div style="width:50%; background-color:#DAA520;">Cost500</div>
<table style="text-align:left;"><tbody>
<tr><th>Active</th><td>None</td></tr>
<tr><th>Bonus</th><td>+45 Movement Speed<br></td></tr>
<tr><th>Disassemble?</th><td>No</td></tr>
</tbody></table>
</div>
</body></html>`

func newTestCrawler(t *testing.T) (*Crawler, *fakeSession, *bytes.Buffer) {
	t.Helper()
	session := &fakeSession{pages: map[string]string{
		testBaseURL: crawlIndexPage,
		"https://wiki.example.com/wiki/Boots_of_Speed": bootsPage,
	}}
	var buf bytes.Buffer
	return NewCrawler(session, testBaseURL, ExtractOptions{}, &buf), session, &buf
}

func TestCrawlerLoadIndex(t *testing.T) {
	crawler, session, buf := newTestCrawler(t)

	if err := crawler.LoadIndex(context.Background()); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(session.visited) != 1 || session.visited[0] != testBaseURL {
		t.Errorf("visited = %v, want index page only", session.visited)
	}
	if crawler.Catalog() == nil || crawler.Catalog().Len() != 2 {
		t.Errorf("catalog = %v", crawler.Catalog())
	}
	if !strings.Contains(buf.String(), "listed 1 categories, 2 items indexed") {
		t.Errorf("progress = %q", buf.String())
	}
}

func TestCrawlerFetchCategory(t *testing.T) {
	crawler, session, buf := newTestCrawler(t)
	ctx := context.Background()

	if err := crawler.LoadIndex(ctx); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	result, err := crawler.FetchCategory(ctx, "Consumables")
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}

	// One item resolves, the other has no page; the walk continues past it.
	if result.Fetched != 1 || result.Failed != 1 || result.Total() != 2 {
		t.Errorf("result = %+v", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false, want true")
	}
	if !strings.Contains(buf.String(), "failed:  Missing_Page") {
		t.Errorf("progress = %q", buf.String())
	}

	boots, ok := crawler.Catalog().Lookup("Boots of Speed")
	if !ok {
		t.Fatal("Boots of Speed missing from index")
	}
	if boots.Cost == nil || *boots.Cost != 500 {
		t.Errorf("Cost = %v, want 500", boots.Cost)
	}
	if boots.Detail == nil || boots.Detail.Image != "https://cdn.wiki.example.com/boots.png" {
		t.Errorf("Detail = %+v", boots.Detail)
	}
	if b := boots.Detail.Bonus["Movement Speed"]; b.Value != 45 {
		t.Errorf("Bonus = %+v", boots.Detail.Bonus)
	}
	if boots.Detail.Disassemble == nil || *boots.Detail.Disassemble {
		t.Errorf("Disassemble = %v, want false", boots.Detail.Disassemble)
	}

	// The snapshot waits for the lazy-load placeholder under the main image.
	want := selMainImage + " " + SelLazyImage
	if len(session.waited) == 0 || session.waited[0] != want {
		t.Errorf("waited = %v, want %q", session.waited, want)
	}
}

func TestCrawlerFetchCategoryErrors(t *testing.T) {
	crawler, _, _ := newTestCrawler(t)
	ctx := context.Background()

	if _, err := crawler.FetchCategory(ctx, "Consumables"); err == nil {
		t.Error("expected error before LoadIndex")
	}

	if err := crawler.LoadIndex(ctx); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, err := crawler.FetchCategory(ctx, "Nope"); err == nil {
		t.Error("expected error for unknown category")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := crawler.FetchCategory(cancelled, "Consumables"); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestCrawlerExport(t *testing.T) {
	crawler, _, _ := newTestCrawler(t)
	ctx := context.Background()

	if _, err := crawler.Export([]string{"Consumables"}); err == nil {
		t.Error("expected error before LoadIndex")
	}

	if err := crawler.LoadIndex(ctx); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, err := crawler.FetchCategory(ctx, "Consumables"); err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}

	export, err := crawler.Export([]string{"Consumables"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	records := export["Consumables"]
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].URL != "" {
		t.Errorf("exported URL = %q, want empty", records[0].URL)
	}
	if records[0].Detail == nil || records[0].Detail.Image != "" {
		t.Errorf("exported detail = %+v", records[0].Detail)
	}
}

func TestCrawlerImageManifest(t *testing.T) {
	crawler, _, _ := newTestCrawler(t)
	ctx := context.Background()

	if crawler.ImageManifest() != nil {
		t.Error("manifest before LoadIndex should be nil")
	}

	if err := crawler.LoadIndex(ctx); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, err := crawler.FetchCategory(ctx, "Consumables"); err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}

	refs := crawler.ImageManifest()
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	// Sorted by item ID: Boots_of_Speed before Missing_Page.
	if refs[0].ID != "Boots_of_Speed" || refs[0].URL != "https://cdn.wiki.example.com/boots.png" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].ID != "Missing_Page" || refs[1].URL != "" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}
