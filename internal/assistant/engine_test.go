package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/umoja/ujenzi/internal/answer"
	"github.com/umoja/ujenzi/internal/config"
	"github.com/umoja/ujenzi/internal/llm"
	"github.com/umoja/ujenzi/internal/models"
	"github.com/umoja/ujenzi/internal/storage"
	"github.com/umoja/ujenzi/internal/worldpop"
)

const testArtifact = `[
	{"text": "Accra's coastal districts flood every rainy season and drainage is unmaintained.", "type": "text", "filename": "ghana_floods.pdf", "index": 0, "embedding": [1, 0, 0]},
	{"text": "Matatu routes in Nairobi leave eastern estates underserved.", "type": "text", "filename": "nairobi_transit.pdf", "index": 1, "embedding": [0, 1, 0]},
	{"text": "Piped water coverage in Lagos lags population growth.", "type": "text", "filename": "lagos_water.pdf", "index": 2, "embedding": [0, 0, 1]}
]`

const ghanaQuestion = "How should Accra prepare for seasonal flooding in Ghana?"

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return path
}

// pinnedEmbedder returns a mock that maps the Ghana question next to the
// first artifact chunk.
func pinnedEmbedder() *llm.MockEmbedder {
	embedder := llm.NewMockEmbedder(3)
	embedder.Vectors = map[string][]float32{
		ghanaQuestion: {0.9, 0.1, 0.1},
	}
	return embedder
}

func worldpopStub(t *testing.T, handler http.HandlerFunc) *worldpop.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return worldpop.NewClient(server.URL, 0)
}

func ghanaPopulationHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"data": [
		{"popyear": 2020, "title": "Ghana 100m Population", "country": "Ghana", "citation": "WorldPop (www.worldpop.org)"}
	]}`))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func testCatalog() []models.ArticleImages {
	return []models.ArticleImages{
		{
			ArticleID:    "accra-flooding",
			ArticleTopic: "flood risk in accra",
			Images: []models.ImageRecord{
				{
					Filename:          "flood_zones.png",
					Description:       "Flood risk zones by neighborhood",
					RelevanceKeywords: []string{"flooding", "drainage"},
					GeographicFocus:   "accra",
				},
			},
		},
	}
}

func TestAsk(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	imagesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(imagesDir, "flood_zones.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("writing image fixture: %v", err)
	}

	completer := &llm.MockCompleter{Text: "Prioritize drainage upgrades in coastal districts. [1]"}
	engine := NewEngine(
		storage.NewFileStore(artifact),
		pinnedEmbedder(),
		completer,
		testConfig(),
		WithPopulationClient(worldpopStub(t, ghanaPopulationHandler)),
		WithImageCatalog(testCatalog(), imagesDir),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: ghanaQuestion})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if bundle.ID == "" {
		t.Error("bundle has no id")
	}
	if bundle.Question != ghanaQuestion {
		t.Errorf("question = %q", bundle.Question)
	}
	if !strings.HasPrefix(bundle.Text, "Prioritize drainage upgrades") {
		t.Errorf("answer text = %q", bundle.Text)
	}
	if !strings.Contains(bundle.Text, "**Population Context:**") {
		t.Error("answer is missing the population footer")
	}
	if !strings.Contains(bundle.Text, "- Country: Ghana") || !strings.Contains(bundle.Text, "- Latest WorldPop data: 2020") {
		t.Errorf("population footer malformed:\n%s", bundle.Text)
	}
	if bundle.Country != "GHA" {
		t.Errorf("country = %q, want GHA", bundle.Country)
	}
	if bundle.Population == nil || bundle.Population.Year != 2020 {
		t.Errorf("population record = %+v", bundle.Population)
	}

	if len(bundle.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(bundle.Sources))
	}
	if bundle.Sources[0].Name != "ghana_floods.pdf" {
		t.Errorf("top source = %q, want ghana_floods.pdf", bundle.Sources[0].Name)
	}
	if !strings.Contains(bundle.Sources[0].Preview, "coastal districts flood") {
		t.Errorf("top source preview = %q", bundle.Sources[0].Preview)
	}

	if len(bundle.MatchedImages) != 1 || bundle.MatchedImages[0].Filename != "flood_zones.png" {
		t.Errorf("matched images = %+v", bundle.MatchedImages)
	}

	// The model prompt must carry the ranked chunks in citation order.
	if !strings.Contains(completer.LastUser, "[1] Accra's coastal districts flood") {
		t.Errorf("context did not rank the Ghana chunk first:\n%s", completer.LastUser)
	}
	if !strings.Contains(completer.LastUser, "Question: "+ghanaQuestion) {
		t.Errorf("user prompt missing question:\n%s", completer.LastUser)
	}
}

func TestAsk_ConfigLimitsApplyWhenRequestOmitsThem(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	cfg := testConfig()
	cfg.Knowledge.TopK = 2
	cfg.Images.MaxResults = 1

	engine := NewEngine(
		storage.NewFileStore(artifact),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "Answer."},
		cfg,
	)

	req := &models.AskRequest{Question: "Where should new clinics go?"}
	bundle, err := engine.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(bundle.Sources) != 2 {
		t.Errorf("got %d sources, want the configured 2", len(bundle.Sources))
	}
	if req.TopK != 2 || req.MaxImages != 1 {
		t.Errorf("request limits = %d/%d, want 2/1 from config", req.TopK, req.MaxImages)
	}

	// An explicit request limit still beats the configured default.
	req = &models.AskRequest{Question: "Where should new clinics go?", TopK: 3}
	bundle, err = engine.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(bundle.Sources) != 3 {
		t.Errorf("got %d sources, want the requested 3", len(bundle.Sources))
	}
}

func TestAsk_PopulationTimeoutDegrades(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data": [{"popyear": 2020, "country": "Ghana"}]}`))
	}))
	t.Cleanup(slow.Close)

	engine := NewEngine(
		storage.NewFileStore(artifact),
		pinnedEmbedder(),
		&llm.MockCompleter{Text: "Answer before the lookup finishes."},
		testConfig(),
		WithPopulationClient(worldpop.NewClient(slow.URL, 20*time.Millisecond)),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: ghanaQuestion})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.HasPrefix(bundle.Text, "Answer before the lookup finishes.") {
		t.Errorf("answer text = %q", bundle.Text)
	}
	if strings.Contains(bundle.Text, "**Population Context:**") {
		t.Error("timed-out lookup must not leave a population footer")
	}
	if bundle.Population != nil {
		t.Errorf("population record = %+v, want nil", bundle.Population)
	}
}

func TestAsk_PopulationFailureDegrades(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	failing := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}

	engine := NewEngine(
		storage.NewFileStore(artifact),
		pinnedEmbedder(),
		&llm.MockCompleter{Text: "Answer without demographics."},
		testConfig(),
		WithPopulationClient(worldpopStub(t, failing)),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: ghanaQuestion})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if strings.Contains(bundle.Text, "**Population Context:**") {
		t.Error("degraded answer should not carry a population footer")
	}
	if bundle.Population != nil {
		t.Errorf("population record = %+v, want nil", bundle.Population)
	}
	if bundle.Country != "GHA" {
		t.Errorf("country = %q, want GHA even when lookup fails", bundle.Country)
	}
}

func TestAsk_NoCountryDetected(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	stub := worldpopStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("population API called for a question without a country")
	})

	engine := NewEngine(
		storage.NewFileStore(artifact),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "General advice."},
		testConfig(),
		WithPopulationClient(stub),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: "Where should new clinics go?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if bundle.Country != "" {
		t.Errorf("country = %q, want empty", bundle.Country)
	}
	if bundle.Population != nil {
		t.Errorf("population record = %+v, want nil", bundle.Population)
	}
}

func TestAsk_StoreUnavailable(t *testing.T) {
	engine := NewEngine(
		storage.NewFileStore(filepath.Join(t.TempDir(), "missing.json")),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "unused"},
		testConfig(),
	)

	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "any question"})
	if !errors.Is(err, storage.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestAsk_EmbeddingFailure(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)
	embedder := llm.NewMockEmbedder(3)
	embedder.Err = errors.New("api quota exhausted")

	engine := NewEngine(
		storage.NewFileStore(artifact),
		embedder,
		&llm.MockCompleter{Text: "unused"},
		testConfig(),
	)

	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "any question"})
	if !errors.Is(err, llm.ErrEmbeddingFailed) {
		t.Fatalf("error = %v, want ErrEmbeddingFailed", err)
	}
}

func TestAsk_SynthesisFailure(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)

	engine := NewEngine(
		storage.NewFileStore(artifact),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Err: errors.New("model overloaded")},
		testConfig(),
	)

	_, err := engine.Ask(context.Background(), &models.AskRequest{Question: "any question"})
	if !errors.Is(err, answer.ErrSynthesisFailed) {
		t.Fatalf("error = %v, want ErrSynthesisFailed", err)
	}
}

func TestAsk_BlankQuestion(t *testing.T) {
	engine := NewEngine(
		storage.NewFileStore(writeArtifact(t, testArtifact)),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "unused"},
		testConfig(),
	)

	if _, err := engine.Ask(context.Background(), &models.AskRequest{Question: "   "}); err == nil {
		t.Fatal("expected validation error for blank question")
	}
}

func TestAsk_EmptyStoreStillAnswers(t *testing.T) {
	artifact := writeArtifact(t, `[]`)

	completer := &llm.MockCompleter{Text: "No knowledge loaded yet, general guidance only."}
	engine := NewEngine(
		storage.NewFileStore(artifact),
		llm.NewMockEmbedder(3),
		completer,
		testConfig(),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: "Where should new clinics go?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(bundle.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(bundle.Sources))
	}
	if !strings.Contains(completer.LastUser, "Context:\n\n\nQuestion:") {
		t.Errorf("empty store should produce an empty context block:\n%q", completer.LastUser)
	}
}

func TestAsk_MissingImageFileFiltered(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)

	engine := NewEngine(
		storage.NewFileStore(artifact),
		pinnedEmbedder(),
		&llm.MockCompleter{Text: "Answer."},
		testConfig(),
		WithImageCatalog(testCatalog(), t.TempDir()),
	)

	bundle, err := engine.Ask(context.Background(), &models.AskRequest{Question: ghanaQuestion})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(bundle.MatchedImages) != 0 {
		t.Errorf("matched images = %+v, want none when files are missing", bundle.MatchedImages)
	}
}

func TestStatus(t *testing.T) {
	artifact := writeArtifact(t, testArtifact)

	engine := NewEngine(
		storage.NewFileStore(artifact),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "unused"},
		testConfig(),
		WithImageCatalog(testCatalog(), t.TempDir()),
	)

	status, err := engine.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Chunks != 3 {
		t.Errorf("chunks = %d, want 3", status.Chunks)
	}
	if status.UniqueSources != 3 {
		t.Errorf("unique sources = %d, want 3", status.UniqueSources)
	}
	if status.ArtifactBytes <= 0 {
		t.Errorf("artifact bytes = %d, want > 0", status.ArtifactBytes)
	}
	if status.Articles != 1 || status.Images != 1 {
		t.Errorf("catalog stats = %d articles / %d images, want 1/1", status.Articles, status.Images)
	}

	engine.ReplaceCatalog(nil)
	status, err = engine.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() after catalog swap error = %v", err)
	}
	if status.Articles != 0 || status.Images != 0 {
		t.Errorf("after swap: %d articles / %d images, want 0/0", status.Articles, status.Images)
	}
}

func TestStatus_StoreUnavailable(t *testing.T) {
	engine := NewEngine(
		storage.NewFileStore(filepath.Join(t.TempDir(), "missing.json")),
		llm.NewMockEmbedder(3),
		&llm.MockCompleter{Text: "unused"},
		testConfig(),
	)

	if _, err := engine.Status(context.Background()); !errors.Is(err, storage.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
}
