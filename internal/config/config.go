package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

type Config struct {
	Embedding EmbeddingConfig
	Roster    RosterConfig
	Matching  MatchingConfig
	Dataset   DatasetConfig
	Imaging   ImagingConfig
}

type EmbeddingConfig struct {
	URL            string // base URL of the face embedding service (default http://localhost:8000)
	Dim            int    // expected embedding dimensionality (default 128)
	TimeoutSeconds int    // per-call timeout (default 30)
}

type RosterConfig struct {
	SnapshotPath string // path to the persisted roster snapshot (default roster.json)
	UseHNSW      bool   // opt-in approximate index; exact linear scan is the default
}

type MatchingConfig struct {
	Threshold float64 // similarity percentage cutoff, inclusive (default 80)
}

type DatasetConfig struct {
	URL     string   // CSV export URL of the wanted-persons spreadsheet
	Columns []string // required columns, from the embedded schema
}

type ImagingConfig struct {
	MaxBytes int64 // cap on raw image payloads, request body and reference fetches alike
	MaxSize  int   // max decoded dimension before downscaling
}

// datasetSchema mirrors the embedded schema.yaml.
type datasetSchema struct {
	Columns []string `yaml:"columns"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean flag.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var schema datasetSchema
	if err := yaml.Unmarshal(schemaYAML, &schema); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded schema.yaml: " + err.Error())
	}

	return &Config{
		Embedding: EmbeddingConfig{
			URL:            envString("EMBEDDING_URL", "http://localhost:8000"),
			Dim:            envInt("EMBEDDING_DIM", 128),
			TimeoutSeconds: envInt("EMBEDDING_TIMEOUT_SECONDS", 30),
		},
		Roster: RosterConfig{
			SnapshotPath: envString("ROSTER_PATH", "roster.json"),
			UseHNSW:      envBool("MATCH_USE_HNSW"),
		},
		Matching: MatchingConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 80.0),
		},
		Dataset: DatasetConfig{
			URL:     os.Getenv("DATASET_URL"),
			Columns: schema.Columns,
		},
		Imaging: ImagingConfig{
			MaxBytes: int64(envInt("MAX_IMAGE_BYTES", 10<<20)),
			MaxSize:  envInt("MAX_IMAGE_SIZE", 1600),
		},
	}
}
