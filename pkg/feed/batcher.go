package feed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"newsbrief/pkg/content"
	"newsbrief/pkg/domain"
	"newsbrief/pkg/logbuf"
	"newsbrief/pkg/seen"
)

const (
	// batchSize caps how many fresh articles one fetch surfaces.
	batchSize = 6
	// minBodyLength is the floor below which a normalized body is considered
	// an extraction failure.
	minBodyLength = 50
	// extractionFailedPlaceholder stands in when neither body nor title
	// survived normalization.
	extractionFailedPlaceholder = "extraction failed"

	// randomAttempts bounds the random-source retry loop.
	randomAttempts = 5
	// randomRetryPause is the delay between random-source attempts.
	randomRetryPause = 500 * time.Millisecond
)

// Batch is the result of fetching one feed: the fresh normalized articles and
// how many candidates the feed returned in total.
type Batch struct {
	Articles     []domain.RawArticle
	FetchedCount int
}

// Batcher turns raw feed responses into bounded batches of previously-unseen,
// normalized articles.
type Batcher struct {
	client *Client
	seen   *seen.Store
	logs   *logbuf.Buffer
}

// NewBatcher wires a batcher over the feed client and dedup store.
func NewBatcher(client *Client, seenStore *seen.Store, logs *logbuf.Buffer) *Batcher {
	return &Batcher{client: client, seen: seenStore, logs: logs}
}

// FetchBatch fetches the feed, filters out already-seen items, and emits at
// most batchSize normalized articles in feed order. Taken items are marked
// seen; a feed where everything is already seen yields an empty batch.
func (b *Batcher) FetchBatch(ctx context.Context, feedURL, sourceName string) (Batch, error) {
	items, err := b.client.Fetch(ctx, feedURL)
	if err != nil {
		b.logs.Error("Feed fetch failed", map[string]any{"url": feedURL, "error": err})
		return Batch{}, err
	}

	batch := Batch{FetchedCount: len(items)}
	for _, item := range items {
		if len(batch.Articles) >= batchSize {
			break
		}

		id := item.ID()
		alreadySeen, err := b.seen.IsSeen(ctx, id)
		if err != nil {
			return Batch{}, fmt.Errorf("check seen id: %w", err)
		}
		if alreadySeen {
			continue
		}

		if err := b.seen.MarkSeen(ctx, id); err != nil {
			return Batch{}, fmt.Errorf("mark seen id: %w", err)
		}
		batch.Articles = append(batch.Articles, b.buildArticle(item, sourceName))
	}

	b.logs.Info("Feed batch ready", map[string]any{
		"source":  sourceName,
		"fetched": batch.FetchedCount,
		"fresh":   len(batch.Articles),
	})
	return batch, nil
}

// buildArticle normalizes an item's body, falling back to the title and
// finally to a placeholder when extraction came up empty.
func (b *Batcher) buildArticle(item Item, sourceName string) domain.RawArticle {
	title := item.Title
	if title == "" {
		if extracted, err := content.ExtractTitle(item.Body()); err == nil {
			title = extracted
		}
	}

	body := content.Normalize(item.Body())
	if len([]rune(body)) < minBodyLength {
		body = content.Normalize(title)
		if body == "" {
			body = extractionFailedPlaceholder
		}
	}

	return domain.RawArticle{
		Title:      title,
		Content:    body,
		SourceName: sourceName,
	}
}

// RandomResult reports the outcome of a random-source fetch: the batch, the
// source that produced it, and how many distinct sources were tried.
type RandomResult struct {
	Batch        Batch
	Source       Source
	SourcesTried int
}

// FetchRandom picks sources at random until one yields a non-empty batch,
// giving up after randomAttempts tries with a short pause between them.
func (b *Batcher) FetchRandom(ctx context.Context, sources []Source) (RandomResult, error) {
	if len(sources) == 0 {
		return RandomResult{}, fmt.Errorf("no sources configured")
	}

	tried := make(map[string]bool)
	var result RandomResult

	for attempt := 0; attempt < randomAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(randomRetryPause):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		source := sources[rand.Intn(len(sources))]
		tried[source.URL] = true
		result.SourcesTried = len(tried)

		batch, err := b.FetchBatch(ctx, source.URL, source.Name)
		if err != nil {
			b.logs.Warn("Random source failed, trying another", map[string]any{
				"source": source.Name, "error": err,
			})
			continue
		}
		if len(batch.Articles) == 0 {
			continue
		}

		result.Batch = batch
		result.Source = source
		return result, nil
	}

	return result, fmt.Errorf("no fresh articles after %d attempts across %d sources", randomAttempts, result.SourcesTried)
}
