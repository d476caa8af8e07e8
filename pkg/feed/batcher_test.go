package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsbrief/pkg/logbuf"
	"newsbrief/pkg/seen"
	"newsbrief/pkg/store"
)

func newTestBatcher(endpoint string) (*Batcher, *seen.Store) {
	seenStore := seen.NewStore(store.NewMemoryStore())
	return NewBatcher(NewClient(endpoint), seenStore, logbuf.New()), seenStore
}

func TestFetchBatch_NormalizesAndMarksSeen(t *testing.T) {
	payload := `[{"title":"A","link":"u1","content":"<p>Hello world this is enough text to pass the fifty character floor easily.</p>"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("rss_url") != "https://example.com/feed" {
			t.Errorf("unexpected rss_url: %s", r.URL.Query().Get("rss_url"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		if r.Header.Get("ngrok-skip-browser-warning") != "true" {
			t.Errorf("missing tunnel-bypass header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	batcher, seenStore := newTestBatcher(server.URL)
	batch, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test Source")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}

	if len(batch.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(batch.Articles))
	}
	article := batch.Articles[0]
	if article.Title != "A" {
		t.Errorf("title mismatch: %q", article.Title)
	}
	want := "Hello world this is enough text to pass the fifty character floor easily."
	if article.Content != want {
		t.Errorf("content mismatch:\n got %q\nwant %q", article.Content, want)
	}
	if article.SourceName != "Test Source" {
		t.Errorf("source name mismatch: %q", article.SourceName)
	}

	if ok, _ := seenStore.IsSeen(context.Background(), "u1"); !ok {
		t.Errorf("u1 should be marked seen after batching")
	}
}

func TestFetchBatch_AllSeenYieldsEmptyBatch(t *testing.T) {
	payload := `[{"title":"A","link":"u1","content":"x"},{"title":"B","link":"u2","content":"y"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	batcher, seenStore := newTestBatcher(server.URL)
	ctx := context.Background()
	_ = seenStore.MarkSeen(ctx, "u1")
	_ = seenStore.MarkSeen(ctx, "u2")

	batch, err := batcher.FetchBatch(ctx, "https://example.com/feed", "Test")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch.Articles) != 0 {
		t.Errorf("expected empty batch, got %d articles", len(batch.Articles))
	}
	if batch.FetchedCount != 2 {
		t.Errorf("expected fetchedCount 2, got %d", batch.FetchedCount)
	}
}

func TestFetchBatch_RespectsBatchSize(t *testing.T) {
	payload := `[`
	for i := 0; i < 10; i++ {
		if i > 0 {
			payload += ","
		}
		payload += `{"title":"T","link":"u` + string(rune('0'+i)) + `","content":"<p>A body long enough to comfortably clear the fifty character minimum floor.</p>"}`
	}
	payload += `]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	batcher, _ := newTestBatcher(server.URL)
	batch, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch.Articles) != batchSize {
		t.Errorf("expected %d articles, got %d", batchSize, len(batch.Articles))
	}
	if batch.FetchedCount != 10 {
		t.Errorf("expected fetchedCount 10, got %d", batch.FetchedCount)
	}
}

func TestFetchBatch_ShortBodyFallsBackToTitle(t *testing.T) {
	payload := `[{"title":"A descriptive headline","link":"u1","content":"<p>tiny</p>"},{"title":"","link":"u2","content":""}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	batcher, _ := newTestBatcher(server.URL)
	batch, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(batch.Articles))
	}
	if batch.Articles[0].Content != "A descriptive headline" {
		t.Errorf("expected title substitution, got %q", batch.Articles[0].Content)
	}
	if batch.Articles[1].Content != "extraction failed" {
		t.Errorf("expected placeholder, got %q", batch.Articles[1].Content)
	}
}

func TestFetchBatch_EntriesObjectShape(t *testing.T) {
	payload := `{"entries":[{"title":"A","guid":"g1","description":"<p>Wrapped entries array with plenty of text to pass the length floor.</p>"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	batcher, seenStore := newTestBatcher(server.URL)
	batch, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(batch.Articles))
	}
	// No link or url: guid is the dedup id.
	if ok, _ := seenStore.IsSeen(context.Background(), "g1"); !ok {
		t.Errorf("guid should be the seen id")
	}
}

func TestFetchBatch_RawXMLFallback(t *testing.T) {
	rssXML := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<item>
			<title>Article 1</title>
			<link>https://example.com/article1</link>
			<description>&lt;p&gt;A description long enough to clear the fifty character content floor.&lt;/p&gt;</description>
		</item>
	</channel>
</rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssXML))
	}))
	defer server.Close()

	batcher, _ := newTestBatcher(server.URL)
	batch, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test")
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch.Articles) != 1 {
		t.Fatalf("expected 1 article from XML fallback, got %d", len(batch.Articles))
	}
	if batch.Articles[0].Title != "Article 1" {
		t.Errorf("title mismatch: %q", batch.Articles[0].Title)
	}
}

func TestFetchBatch_ServerErrorIsHardFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	batcher, _ := newTestBatcher(server.URL)
	if _, err := batcher.FetchBatch(context.Background(), "https://example.com/feed", "Test"); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestFetchRandom_RetriesUntilFreshArticles(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer empty.Close()

	batcher, _ := newTestBatcher(empty.URL)
	_, err := batcher.FetchRandom(context.Background(), []Source{
		{Name: "Empty", URL: "https://example.com/empty"},
	})
	if err == nil {
		t.Fatalf("expected failure when every attempt yields an empty batch")
	}
}

func TestFetchRandom_NoSources(t *testing.T) {
	batcher, _ := newTestBatcher("http://unused")
	if _, err := batcher.FetchRandom(context.Background(), nil); err == nil {
		t.Fatalf("expected error with no sources")
	}
}
