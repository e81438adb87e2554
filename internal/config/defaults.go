package config

// Default hosted models. The embedding model must stay in sync with the
// ingestion pipeline that produced the knowledge-base artifact.
const (
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Knowledge.BasePath == "" {
		cfg.Knowledge.BasePath = ".ujenzi/data/knowledge.json"
	}
	if cfg.Knowledge.TopK == 0 {
		cfg.Knowledge.TopK = 5
	}
	if cfg.Model.ChatModel == "" {
		cfg.Model.ChatModel = DefaultChatModel
	}
	if cfg.Model.EmbeddingModel == "" {
		cfg.Model.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.7
	}
	if cfg.Model.RequestTimeoutSeconds == 0 {
		cfg.Model.RequestTimeoutSeconds = 60
	}
	if cfg.Population.BaseURL == "" {
		cfg.Population.BaseURL = "https://www.worldpop.org/rest/data/pop/wpgp"
	}
	if cfg.Population.TimeoutSeconds == 0 {
		cfg.Population.TimeoutSeconds = 5
	}
	if cfg.Population.ReferenceYear == 0 {
		cfg.Population.ReferenceYear = 2020
	}
	if cfg.Images.CatalogPath == "" {
		cfg.Images.CatalogPath = ".ujenzi/data/image_catalog.json"
	}
	if cfg.Images.Dir == "" {
		cfg.Images.Dir = ".ujenzi/data/images"
	}
	if cfg.Images.MaxResults == 0 {
		cfg.Images.MaxResults = 2
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}
