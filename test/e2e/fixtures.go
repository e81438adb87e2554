package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/umoja/ujenzi/internal/models"
)

// pngSignature is the eight-byte PNG file header. Figure filtering checks
// extension and existence, not pixels, so the header alone is enough.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// artifactRecord mirrors the knowledge-base artifact schema produced by the
// ingestion pipeline.
type artifactRecord struct {
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Filename  string    `json:"filename"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// WriteArtifact writes a knowledge-base artifact holding the given topics,
// embedding each on the axis matching its position.
func WriteArtifact(path string, topics []Topic) error {
	records := make([]artifactRecord, len(topics))
	for i, topic := range topics {
		records[i] = artifactRecord{
			Text:      topic.Text,
			Type:      "text",
			Filename:  topic.Source,
			Index:     i,
			Embedding: axisVector(i),
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteCatalog writes an image catalog file in the on-disk schema.
func WriteCatalog(path string, catalog []models.ArticleImages) error {
	payload := struct {
		ImageKnowledgeBase []models.ArticleImages `json:"image_knowledge_base"`
	}{catalog}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteFigures creates every figure the catalog references except
// MissingFigure, which stays absent so filtering has something to drop.
func WriteFigures(dir string, catalog []models.ArticleImages) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, article := range catalog {
		for _, image := range article.Images {
			if image.Filename == MissingFigure {
				continue
			}
			if err := os.WriteFile(filepath.Join(dir, image.Filename), pngSignature, 0644); err != nil {
				return err
			}
		}
	}
	return nil
}
