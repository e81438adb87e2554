package images

import (
	"testing"

	"github.com/umoja/ujenzi/internal/models"
)

func singleRecordCatalog(record models.ImageRecord) []models.ArticleImages {
	return []models.ArticleImages{
		{ArticleID: "a1", ArticleTopic: record.ArticleTopic, Images: []models.ImageRecord{record}},
	}
}

func TestScoreRecord(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		record models.ImageRecord
		want   int
	}{
		{
			name:   "one keyword",
			query:  "how bad is flooding downtown",
			record: models.ImageRecord{RelevanceKeywords: []string{"flooding", "drainage"}},
			want:   2,
		},
		{
			name:   "every keyword counts",
			query:  "flooding and drainage problems",
			record: models.ImageRecord{RelevanceKeywords: []string{"flooding", "drainage"}},
			want:   4,
		},
		{
			name:   "geographic focus",
			query:  "water access in accra",
			record: models.ImageRecord{GeographicFocus: "Accra"},
			want:   3,
		},
		{
			name:   "data type with separators",
			query:  "show settlement growth over time",
			record: models.ImageRecord{DataType: "settlement_growth"},
			want:   2,
		},
		{
			name:   "data type with hyphen",
			query:  "population density trends",
			record: models.ImageRecord{DataType: "population-density"},
			want:   2,
		},
		{
			name:   "article topic",
			query:  "transit access in nairobi",
			record: models.ImageRecord{ArticleTopic: "transit access"},
			want:   1,
		},
		{
			name:  "all fields stack",
			query: "flood risk map for accra flooding",
			record: models.ImageRecord{
				RelevanceKeywords: []string{"flooding"},
				GeographicFocus:   "accra",
				DataType:          "risk_map",
				ArticleTopic:      "flood risk",
			},
			want: 8,
		},
		{
			name:   "no overlap",
			query:  "school placement in kampala",
			record: models.ImageRecord{RelevanceKeywords: []string{"flooding"}, GeographicFocus: "accra"},
			want:   0,
		},
		{
			name:   "case insensitive",
			query:  "FLOODING in ACCRA",
			record: models.ImageRecord{RelevanceKeywords: []string{"Flooding"}, GeographicFocus: "accra"},
			want:   0, // query is lowercased by Match, not scoreRecord
		},
		{
			name:   "empty metadata never matches",
			query:  "anything at all",
			record: models.ImageRecord{RelevanceKeywords: []string{""}, GeographicFocus: "", DataType: "", ArticleTopic: ""},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record.Filename = "x.png"
			if got := scoreRecord(tt.query, tt.record); got != tt.want {
				t.Errorf("scoreRecord(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatch_LowercasesQuery(t *testing.T) {
	catalog := singleRecordCatalog(models.ImageRecord{
		Filename:          "flood.png",
		RelevanceKeywords: []string{"flooding"},
	})
	results := Match("FLOODING Problems", catalog, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score != 2 {
		t.Errorf("score = %d, want 2", results[0].Score)
	}
}

func TestMatch_GeographicFocusOutranksSingleKeyword(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID: "a1",
			Images: []models.ImageRecord{
				{Filename: "keyword.png", RelevanceKeywords: []string{"water"}},
				{Filename: "geo.png", GeographicFocus: "lagos"},
			},
		},
	}

	results := Match("water shortages in lagos", catalog, 5)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.Filename != "geo.png" {
		t.Errorf("first result = %q, want geo.png", results[0].Record.Filename)
	}
	if results[0].Score != 3 || results[1].Score != 2 {
		t.Errorf("scores = %d, %d, want 3, 2", results[0].Score, results[1].Score)
	}
}

func TestMatch_ZeroScoresExcluded(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID: "a1",
			Images: []models.ImageRecord{
				{Filename: "match.png", RelevanceKeywords: []string{"sanitation"}},
				{Filename: "nomatch.png", RelevanceKeywords: []string{"rail"}},
			},
		},
	}

	results := Match("sanitation coverage", catalog, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Record.Filename != "match.png" {
		t.Errorf("result = %q, want match.png", results[0].Record.Filename)
	}
}

func TestMatch_TiesKeepCatalogOrder(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID: "a1",
			Images: []models.ImageRecord{
				{Filename: "first.png", RelevanceKeywords: []string{"clinic"}},
				{Filename: "second.png", RelevanceKeywords: []string{"clinic"}},
				{Filename: "third.png", RelevanceKeywords: []string{"clinic"}},
			},
		},
	}

	results := Match("clinic placement", catalog, 5)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"first.png", "second.png", "third.png"}
	for i, name := range want {
		if results[i].Record.Filename != name {
			t.Errorf("result[%d] = %q, want %q", i, results[i].Record.Filename, name)
		}
	}
}

func TestMatch_TruncatesToMaxResults(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID: "a1",
			Images: []models.ImageRecord{
				{Filename: "a.png", RelevanceKeywords: []string{"road"}},
				{Filename: "b.png", RelevanceKeywords: []string{"road"}},
				{Filename: "c.png", RelevanceKeywords: []string{"road"}},
			},
		},
	}

	results := Match("road upgrades", catalog, 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestMatch_NonPositiveMaxResults(t *testing.T) {
	catalog := singleRecordCatalog(models.ImageRecord{
		Filename:          "a.png",
		RelevanceKeywords: []string{"road"},
	})
	for _, max := range []int{0, -1} {
		if results := Match("road upgrades", catalog, max); len(results) != 0 {
			t.Errorf("Match(maxResults=%d) returned %d results, want 0", max, len(results))
		}
	}
}

func TestMatch_SkipsRecordsWithoutFilename(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID: "a1",
			Images: []models.ImageRecord{
				{RelevanceKeywords: []string{"road"}},
				{Filename: "ok.png", RelevanceKeywords: []string{"road"}},
			},
		},
	}

	results := Match("road upgrades", catalog, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Record.Filename != "ok.png" {
		t.Errorf("result = %q, want ok.png", results[0].Record.Filename)
	}
}

func TestMatch_FillsArticleFieldsFromOwner(t *testing.T) {
	catalog := []models.ArticleImages{
		{
			ArticleID:    "growth",
			ArticleTopic: "settlement growth",
			Images:       []models.ImageRecord{{Filename: "g.png", RelevanceKeywords: []string{"settlement"}}},
		},
	}

	results := Match("informal settlement mapping", catalog, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Record.ArticleID != "growth" {
		t.Errorf("article id = %q, want growth", results[0].Record.ArticleID)
	}
	if results[0].Record.ArticleTopic != "settlement growth" {
		t.Errorf("article topic = %q, want settlement growth", results[0].Record.ArticleTopic)
	}
}

func TestMatch_EmptyCatalog(t *testing.T) {
	if results := Match("anything", nil, 5); len(results) != 0 {
		t.Fatalf("expected no results for nil catalog, got %d", len(results))
	}
}
