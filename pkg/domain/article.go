package domain

// RawArticle is a single normalized article emitted by the feed batcher.
// Content holds plain text with paragraphs separated by blank lines.
type RawArticle struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceName string `json:"sourceName"`
}

// HistoryItem is one saved summarization, newest kept first in the history list.
type HistoryItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	OriginalText string `json:"originalText"`
	Summary      string `json:"summary"`
	Timestamp    int64  `json:"timestamp"`
}
