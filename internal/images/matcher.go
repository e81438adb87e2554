package images

import (
	"sort"
	"strings"

	"github.com/umoja/ujenzi/internal/models"
)

// Score weights for each metadata field. Geographic focus outranks a
// single keyword hit so that place-specific figures win for
// place-specific questions.
const (
	keywordPoints    = 2
	geographicPoints = 3
	dataTypePoints   = 2
	topicPoints      = 1
)

// separatorReplacer spaces out data_type values like "settlement_growth"
// so they can match naturally phrased questions.
var separatorReplacer = strings.NewReplacer("_", " ", "-", " ")

// Match scores every catalog image against the question and returns the
// maxResults highest scoring. Each relevance keyword contained in the
// lowercased question adds 2 points, a contained geographic focus adds 3,
// a contained data type adds 2, a contained article topic adds 1. Images
// scoring zero are excluded and ties keep catalog order. Records without
// a filename are skipped. Whether the file exists on disk is a separate
// concern, owned by FilterDisplayable.
func Match(query string, catalog []models.ArticleImages, maxResults int) []models.ScoredImage {
	scored := []models.ScoredImage{}
	if maxResults <= 0 {
		return scored
	}

	q := strings.ToLower(query)
	for _, article := range catalog {
		for _, record := range article.Images {
			if record.Filename == "" {
				continue
			}
			if record.ArticleID == "" {
				record.ArticleID = article.ArticleID
			}
			if record.ArticleTopic == "" {
				record.ArticleTopic = article.ArticleTopic
			}
			if score := scoreRecord(q, record); score > 0 {
				scored = append(scored, models.ScoredImage{Record: record, Score: score})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if maxResults < len(scored) {
		scored = scored[:maxResults]
	}
	return scored
}

// scoreRecord computes the additive overlap score for one record against
// an already lowercased question. Empty metadata fields never match; a
// bare strings.Contains would match everything on "".
func scoreRecord(query string, record models.ImageRecord) int {
	score := 0
	for _, keyword := range record.RelevanceKeywords {
		keyword = strings.ToLower(keyword)
		if keyword != "" && strings.Contains(query, keyword) {
			score += keywordPoints
		}
	}
	if focus := strings.ToLower(record.GeographicFocus); focus != "" && strings.Contains(query, focus) {
		score += geographicPoints
	}
	if dataType := strings.ToLower(separatorReplacer.Replace(record.DataType)); dataType != "" && strings.Contains(query, dataType) {
		score += dataTypePoints
	}
	if topic := strings.ToLower(record.ArticleTopic); topic != "" && strings.Contains(query, topic) {
		score += topicPoints
	}
	return score
}
