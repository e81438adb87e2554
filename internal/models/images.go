package models

// ImageRecord describes one supporting figure from the image catalog.
// GeographicFocus and DataType are optional; empty means absent.
// ArticleID and ArticleTopic are copied down from the owning article
// group when the catalog is loaded.
type ImageRecord struct {
	Filename          string   `json:"filename"`
	Description       string   `json:"description,omitempty"`
	RelevanceKeywords []string `json:"relevance_keywords,omitempty"`
	GeographicFocus   string   `json:"geographic_focus,omitempty"`
	DataType          string   `json:"data_type,omitempty"`
	ArticleID         string   `json:"article_id,omitempty"`
	ArticleTopic      string   `json:"article_topic,omitempty"`
}

// ArticleImages groups the figures belonging to one source article.
type ArticleImages struct {
	ArticleID    string        `json:"article_id"`
	ArticleTopic string        `json:"article_topic"`
	Images       []ImageRecord `json:"images"`
}

// ScoredImage pairs an image record with its relevance score for one query.
type ScoredImage struct {
	Record ImageRecord `json:"record"`
	Score  int         `json:"score"`
}

// CatalogStats summarizes a loaded image catalog.
type CatalogStats struct {
	Articles int `json:"articles"`
	Images   int `json:"images"`
}
