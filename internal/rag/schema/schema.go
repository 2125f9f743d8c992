package schema

// ChunkKind classifies an extracted content chunk. The kind is decided once,
// at extraction time, and drives how the chunk is summarized and indexed.
type ChunkKind string

const (
	KindText  ChunkKind = "text"
	KindTable ChunkKind = "table"
	KindImage ChunkKind = "image"
)

// Kinds lists all chunk kinds in the order the pipelines process them.
var Kinds = []ChunkKind{KindText, KindTable, KindImage}

// ContentChunk is one extracted unit of document content. Text and table
// chunks carry their content in Text (tables flattened to a single string);
// image chunks carry raw encoded bytes in Image.
type ContentChunk struct {
	// Kind is the content classification of this chunk.
	Kind ChunkKind

	// Text holds the string payload for text and table chunks.
	Text string

	// Image holds the encoded image bytes for image chunks.
	Image []byte

	// SourceDocument is the path or name of the document this chunk came from.
	SourceDocument string
}

// IndexEntry is one row in the vector index. For text and table chunks two
// entries share a SourceID: one embedding the summary (used for retrieval)
// and one holding the original content verbatim. Image chunks produce a
// single summary entry whose ImageKey points at the stored binary.
type IndexEntry struct {
	// ID is the unique identifier of this row. Never reused.
	ID string

	// Text is the content that gets embedded and returned on retrieval:
	// either a generated summary or the original chunk content.
	Text string

	// SourceID links this entry to the original chunk it was derived from.
	SourceID string

	// ImageKey is the object store key of the stored image, empty for
	// text and table entries. Opaque to similarity search.
	ImageKey string
}

// QueryContext is the retrieved material grounding an answer: verbatim text
// and table content plus freshly presigned image URLs.
type QueryContext struct {
	Texts  []string `json:"texts"`
	Images []string `json:"images"`
}

// Answer is the result of one query pipeline run.
type Answer struct {
	Response string       `json:"response"`
	Context  QueryContext `json:"context"`
}
