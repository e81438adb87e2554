// Package images matches catalog figures to questions by keyword and
// metadata overlap. Matching is a soft enhancement: a missing or broken
// catalog degrades to "no figures", never to a failed answer.
package images

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/umoja/ujenzi/internal/models"
)

// rawArticle defers decoding of individual image entries so one bad record
// cannot take down the rest of the article.
type rawArticle struct {
	ArticleID    string            `json:"article_id"`
	ArticleTopic string            `json:"article_topic"`
	Images       []json.RawMessage `json:"images"`
}

// LoadCatalog reads the image catalog artifact and copies each article's
// id and topic down onto its records, so records are self-describing
// wherever they travel. Malformed article or image entries are skipped and
// counted rather than failing the load; only an unreadable file or
// unparseable document is an error.
func LoadCatalog(path string) ([]models.ArticleImages, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading image catalog: %w", err)
	}
	var file struct {
		ImageKnowledgeBase []json.RawMessage `json:"image_knowledge_base"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("parsing image catalog: %w", err)
	}

	catalog := make([]models.ArticleImages, 0, len(file.ImageKnowledgeBase))
	skipped := 0
	for _, rawArt := range file.ImageKnowledgeBase {
		var art rawArticle
		if err := json.Unmarshal(rawArt, &art); err != nil {
			skipped++
			continue
		}
		article := models.ArticleImages{
			ArticleID:    art.ArticleID,
			ArticleTopic: art.ArticleTopic,
		}
		for _, rawImg := range art.Images {
			var record models.ImageRecord
			if err := json.Unmarshal(rawImg, &record); err != nil {
				skipped++
				continue
			}
			record.ArticleID = art.ArticleID
			record.ArticleTopic = art.ArticleTopic
			article.Images = append(article.Images, record)
		}
		catalog = append(catalog, article)
	}
	return catalog, skipped, nil
}

// Stats reports article and image counts for a loaded catalog.
func Stats(catalog []models.ArticleImages) models.CatalogStats {
	stats := models.CatalogStats{Articles: len(catalog)}
	for _, article := range catalog {
		stats.Images += len(article.Images)
	}
	return stats
}
