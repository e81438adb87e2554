package models

// PopulationRecord is population-dataset metadata for one country, selected
// by the enrichment policy (exact year, else most recent available).
type PopulationRecord struct {
	Title    string `json:"title"`
	Country  string `json:"country"`
	Year     int    `json:"year"`
	Citation string `json:"citation"`
}

// SourceRef is a display reference to a cited chunk: the origin document
// name and a short text preview.
type SourceRef struct {
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// AnswerBundle is the complete response to one question. CitedChunks holds
// the context chunks in rank order; citation markers [1], [2], ... in Text
// refer positionally to that order, and Sources mirrors it one-to-one.
// Text already includes the population-context block when enrichment
// succeeded; Country and Population expose the same data structurally.
type AnswerBundle struct {
	ID            string            `json:"id"`
	Question      string            `json:"question"`
	Text          string            `json:"answer"`
	CitedChunks   []KnowledgeChunk  `json:"-"`
	Sources       []SourceRef       `json:"sources"`
	MatchedImages []ImageRecord     `json:"images,omitempty"`
	Country       string            `json:"country,omitempty"`
	Population    *PopulationRecord `json:"population,omitempty"`
	QueryTime     int64             `json:"query_time_ms"`
}

// AssistantStatus reports knowledge-base and catalog figures for the
// status surfaces.
type AssistantStatus struct {
	Chunks        int   `json:"chunks"`
	UniqueSources int   `json:"unique_sources"`
	ArtifactBytes int64 `json:"artifact_bytes"`
	Articles      int   `json:"catalog_articles"`
	Images        int   `json:"catalog_images"`
}
