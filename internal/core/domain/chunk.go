package domain

import "time"

type SourceKind string

const (
	SourcePDF       SourceKind = "pdf"
	SourceYouTube   SourceKind = "youtube"
	SourcePlainText SourceKind = "text"
)

// Locator points into the source a chunk came from: a page for PDFs,
// a transcript offset in seconds for videos. Zero values mean "not applicable".
type Locator struct {
	Page     int `json:"page,omitempty"`
	StartSec int `json:"start_sec,omitempty"`
}

// Segment is cleaned source text with its locator, as handed over by a parser
// or transcript fetcher before chunking.
type Segment struct {
	Text    string  `json:"text"`
	Locator Locator `json:"locator"`
}

// Chunk is the immutable unit of retrievable text. Chunks are created during
// ingestion and never mutated; a collection reset destroys them.
type Chunk struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	SourceID   string     `json:"source_id"`
	SourceName string     `json:"source_name"`
	Kind       SourceKind `json:"kind"`
	Locator    Locator    `json:"locator"`
	Text       string     `json:"text"`
}

type SourceStatus string

const (
	StatusUploaded   SourceStatus = "uploaded"
	StatusProcessing SourceStatus = "processing"
	StatusReady      SourceStatus = "ready"
	StatusFailed     SourceStatus = "failed"
)

// Source is one ingested study material (a PDF, a YouTube transcript, or raw
// notes) and its processing lifecycle.
type Source struct {
	ID          string       `json:"id"`
	Collection  string       `json:"collection"`
	Name        string       `json:"name"`
	Kind        SourceKind   `json:"kind"`
	StoragePath string       `json:"storage_path"`
	Status      SourceStatus `json:"status"`
	ChunkCount  int          `json:"chunk_count"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CollectionInfo is the read model for one knowledge base.
type CollectionInfo struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}
