// Package e2e exercises the full question answering pipeline over a
// generated urban-planning corpus: a knowledge artifact and image catalog
// on disk, deterministic model stubs, and a stub population service.
package e2e

import (
	"fmt"

	"github.com/umoja/ujenzi/internal/models"
)

// Dimensions is the embedding width of the corpus. Every topic owns one
// axis, so a question pinned to its topic's axis always ranks that topic's
// chunk first.
const Dimensions = 8

// MissingFigure is referenced by the image catalog but never written to the
// figures directory, so it must be filtered out of every suggestion list.
const MissingFigure = "flood_history.png"

// Topic is one knowledge area. Its chunk embedding is the unit vector of
// the topic's position in the corpus.
type Topic struct {
	Source string
	Text   string
}

// QueryCase is a question plus the pipeline outcomes it must produce.
type QueryCase struct {
	Question    string
	WantSource  string // source that must rank first
	WantCountry string // ISO3 code expected on the answer; empty means none
	WantImage   string // figure expected as the top suggestion; empty means none
	Description string
}

// Corpus bundles the generated topics, query cases, and image catalog used
// by the end-to-end tests.
type Corpus struct {
	Topics  []Topic
	Queries []QueryCase
	Catalog []models.ArticleImages

	TotalTopics  int
	TotalQueries int
}

// BuildCorpus generates the test corpus. Each query names the topic it must
// retrieve; city-only questions check that no country is detected, and the
// Accra questions additionally drive the image catalog.
func BuildCorpus() *Corpus {
	topics := []Topic{
		{"ghana_floods.pdf", "Accra's coastal districts flood each rainy season; storm drains are silted and rarely maintained."},
		{"nairobi_transit.pdf", "Matatu routes concentrate on central Nairobi, leaving the eastern estates with long walks to transit."},
		{"lagos_water.pdf", "Piped water reaches under half of Lagos households; informal vendors fill the gap at high prices."},
		{"kampala_clinics.pdf", "Clinic coverage in Kampala thins sharply outside the central division."},
		{"addis_housing.pdf", "Condominium housing in Addis Ababa lags demand; waiting lists run close to a decade."},
		{"dakar_waste.pdf", "Solid waste collection in Dakar misses most informal settlements on the urban fringe."},
		{"kigali_parks.pdf", "Kigali's wetland parks double as storm buffers and public open space."},
		{"accra_markets.pdf", "Vendors overflow Accra's major markets onto adjacent roadways at peak hours."},
	}

	queries := []QueryCase{
		{
			Question:    "How should Accra prepare for seasonal flooding in Ghana?",
			WantSource:  "ghana_floods.pdf",
			WantCountry: "GHA",
			WantImage:   "flood_zones.png",
			Description: "flooding question enriches with population and figures",
		},
		{
			Question:    "Which Nairobi estates in Kenya lack matatu transit coverage?",
			WantSource:  "nairobi_transit.pdf",
			WantCountry: "KEN",
			Description: "transit question detects Kenya",
		},
		{
			Question:    "What explains piped water shortfalls across Lagos households?",
			WantSource:  "lagos_water.pdf",
			Description: "city-only question detects no country",
		},
		{
			Question:    "Where should Uganda add clinics beyond central Kampala?",
			WantSource:  "kampala_clinics.pdf",
			WantCountry: "UGA",
			Description: "health question detects Uganda",
		},
		{
			Question:    "How can Ethiopia shorten condominium housing waiting lists?",
			WantSource:  "addis_housing.pdf",
			WantCountry: "ETH",
			Description: "housing question detects Ethiopia",
		},
		{
			Question:    "How should Senegal extend waste collection into informal settlements?",
			WantSource:  "dakar_waste.pdf",
			WantCountry: "SEN",
			Description: "waste question detects Senegal",
		},
		{
			Question:    "What role do wetland parks play in Rwanda's urban growth plans?",
			WantSource:  "kigali_parks.pdf",
			WantCountry: "RWA",
			Description: "parks question detects Rwanda",
		},
		{
			Question:    "How do we ease market congestion across Accra in Ghana?",
			WantSource:  "accra_markets.pdf",
			WantCountry: "GHA",
			WantImage:   "market_density.png",
			Description: "market question prefers the market figure",
		},
	}

	catalog := []models.ArticleImages{
		{
			ArticleID:    "accra-flood-risk",
			ArticleTopic: "flood risk mapping in accra",
			Images: []models.ImageRecord{
				{
					Filename:          "flood_zones.png",
					Description:       "Flood risk zones across central Accra",
					RelevanceKeywords: []string{"flooding", "drainage"},
					GeographicFocus:   "accra",
					DataType:          "risk_map",
				},
				{
					Filename:          MissingFigure,
					Description:       "Historic flood extents by year",
					RelevanceKeywords: []string{"flooding"},
					GeographicFocus:   "accra",
				},
			},
		},
		{
			ArticleID:    "accra-market-density",
			ArticleTopic: "market activity in accra",
			Images: []models.ImageRecord{
				{
					Filename:          "market_density.png",
					Description:       "Stall density around Accra's major markets",
					RelevanceKeywords: []string{"market", "congestion"},
					GeographicFocus:   "accra",
					DataType:          "density_map",
				},
			},
		},
	}

	return &Corpus{
		Topics:       topics,
		Queries:      queries,
		Catalog:      catalog,
		TotalTopics:  len(topics),
		TotalQueries: len(queries),
	}
}

// Vectors pins every query question to the embedding axis of its expected
// topic, so retrieval outcomes are decided by the corpus, not by hashing.
func (c *Corpus) Vectors() (map[string][]float32, error) {
	vectors := make(map[string][]float32, len(c.Queries))
	for _, q := range c.Queries {
		axis, err := c.topicAxis(q.WantSource)
		if err != nil {
			return nil, err
		}
		vectors[q.Question] = axisVector(axis)
	}
	return vectors, nil
}

func (c *Corpus) topicAxis(source string) (int, error) {
	for i, topic := range c.Topics {
		if topic.Source == source {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no topic with source %q", source)
}

func axisVector(axis int) []float32 {
	v := make([]float32, Dimensions)
	v[axis] = 1
	return v
}
