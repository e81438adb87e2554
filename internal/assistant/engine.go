// Package assistant orchestrates the question answering pipeline: retrieve,
// rank, synthesize, then enrich with population data and catalog figures.
package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/umoja/ujenzi/internal/answer"
	"github.com/umoja/ujenzi/internal/config"
	"github.com/umoja/ujenzi/internal/country"
	"github.com/umoja/ujenzi/internal/images"
	"github.com/umoja/ujenzi/internal/llm"
	"github.com/umoja/ujenzi/internal/models"
	"github.com/umoja/ujenzi/internal/ranking"
	"github.com/umoja/ujenzi/internal/storage"
	"github.com/umoja/ujenzi/internal/worldpop"
	"github.com/umoja/ujenzi/pkg/utils"
	"go.uber.org/zap"
)

// sourcePreviewLen caps the per-source text preview in answer bundles.
const sourcePreviewLen = 300

// Engine answers questions against the knowledge store. Retrieval, ranking,
// and synthesis are required stages; population and image enrichment are
// optional and degrade to an unenriched answer when they fail.
type Engine struct {
	store       storage.Store
	embedder    llm.EmbeddingProvider
	synthesizer *answer.Synthesizer
	config      *config.Config

	// Optional stages. A nil population client disables population
	// enrichment; an empty catalog disables image matching.
	population *worldpop.Client
	mu         sync.RWMutex // guards catalog, which ReplaceCatalog can swap at runtime
	catalog    []models.ArticleImages
	imagesDir  string
	logger     *zap.Logger // optional; when set, logs degraded enrichment
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for degraded-enrichment warnings and debug events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithPopulationClient enables population enrichment for questions that
// mention a recognized country.
func WithPopulationClient(client *worldpop.Client) EngineOption {
	return func(e *Engine) { e.population = client }
}

// WithImageCatalog enables figure suggestions from a loaded catalog. dir is
// where the figure files live on disk.
func WithImageCatalog(catalog []models.ArticleImages, dir string) EngineOption {
	return func(e *Engine) {
		e.catalog = catalog
		e.imagesDir = dir
	}
}

// NewEngine creates an engine with the given dependencies. Options enable
// the optional enrichment stages.
func NewEngine(
	store storage.Store,
	embedder llm.EmbeddingProvider,
	completions llm.CompletionProvider,
	cfg *config.Config,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		store:       store,
		embedder:    embedder,
		synthesizer: answer.NewSynthesizer(completions, cfg.Model.Temperature),
		config:      cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers one question end to end. Store, embedding, and synthesis
// failures abort the request; enrichment failures only log.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.AnswerBundle, error) {
	startTime := time.Now()
	if req.TopK <= 0 {
		req.TopK = e.config.Knowledge.TopK
	}
	if req.MaxImages <= 0 {
		req.MaxImages = e.config.Images.MaxResults
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	chunks, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := e.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrEmbeddingFailed, err)
	}

	ranked := ranking.Rank(queryEmbedding, chunks, req.TopK)

	text, err := e.synthesizer.Synthesize(ctx, req.Question, ranked)
	if err != nil {
		return nil, err
	}

	bundle := &models.AnswerBundle{
		ID:       uuid.NewString(),
		Question: req.Question,
	}
	for _, result := range ranked {
		bundle.CitedChunks = append(bundle.CitedChunks, result.Chunk)
		bundle.Sources = append(bundle.Sources, models.SourceRef{
			Name:    result.Chunk.Source,
			Preview: utils.Truncate(result.Chunk.Text, sourcePreviewLen),
		})
	}

	if code, ok := country.Detect(req.Question); ok {
		bundle.Country = code
		text = e.enrichPopulation(ctx, text, code, bundle)
	}
	bundle.Text = text

	if catalog := e.catalogSnapshot(); len(catalog) > 0 {
		scored := images.Match(req.Question, catalog, req.MaxImages)
		for _, image := range images.FilterDisplayable(scored, e.imagesDir) {
			bundle.MatchedImages = append(bundle.MatchedImages, image.Record)
		}
	}

	bundle.QueryTime = time.Since(startTime).Milliseconds()
	return bundle, nil
}

// enrichPopulation appends a population footer for the detected country.
// On lookup failure the answer is returned unchanged.
func (e *Engine) enrichPopulation(ctx context.Context, text, iso3 string, bundle *models.AnswerBundle) string {
	if e.population == nil {
		return text
	}
	record, err := e.population.Lookup(ctx, iso3, e.config.Population.ReferenceYear)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("population enrichment skipped",
				zap.String("iso3", iso3),
				zap.Error(err))
		}
		return text
	}
	bundle.Population = record
	return answer.WithPopulationContext(text, record)
}

func (e *Engine) catalogSnapshot() []models.ArticleImages {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// ReplaceCatalog swaps the image catalog at runtime, used when the catalog
// file changes on disk.
func (e *Engine) ReplaceCatalog(catalog []models.ArticleImages) {
	e.mu.Lock()
	e.catalog = catalog
	e.mu.Unlock()
}

// Status reports knowledge store and image catalog figures for the
// status endpoint and CLI.
func (e *Engine) Status(ctx context.Context) (*models.AssistantStatus, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	catalogStats := images.Stats(e.catalogSnapshot())
	return &models.AssistantStatus{
		Chunks:        stats.Chunks,
		UniqueSources: stats.UniqueSources,
		ArtifactBytes: stats.ArtifactBytes,
		Articles:      catalogStats.Articles,
		Images:        catalogStats.Images,
	}, nil
}
