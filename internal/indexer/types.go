package indexer

// Chunk is a piece of a show document small enough to embed.
type Chunk struct {
	Index       int    // position within the document, from 0
	HeadingPath string // e.g. "Season 1 > Pilot"; empty before the first heading
	Text        string
}

// Document is a chunked source file.
type Document struct {
	Source string // path relative to the ingest root, slash separated
	Title  string
	Chunks []Chunk
}

// SourceFile is a document found while scanning the ingest root.
type SourceFile struct {
	RelPath string
	AbsPath string
}
