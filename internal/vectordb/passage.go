package vectordb

import "context"

// Topic categorizes the advisory topic a passage belongs to.
type Topic string

const (
	TopicCrop      Topic = "crop"
	TopicLivestock Topic = "livestock"
	TopicPest      Topic = "pest"
	TopicClimate   Topic = "climate"
	TopicMarket    Topic = "market"
	TopicExtension Topic = "extension"
	TopicGeneral   Topic = "general"
)

// Passage is a unit of advisory knowledge stored and searched by similarity.
type Passage struct {
	ID       string
	Content  string
	Metadata PassageMetadata
}

// PassageMetadata holds structured information about a passage.
type PassageMetadata struct {
	Topic  Topic
	Crop   string
	Region string
	Source string
	Title  string
}

// SearchResult pairs a passage with its similarity score.
type SearchResult struct {
	Passage    Passage
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	Topic *Topic
	Crop  *string
}

// PassageStore defines the interface for storing and searching passages by
// embedding similarity.
type PassageStore interface {
	// AddPassages adds or updates passages in the store.
	AddPassages(ctx context.Context, passages []Passage) error

	// Search performs a semantic search using the query text.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of passages in the store.
	Count() int
}
