package engines

import "time"

// Trail backends selectable through ENGINE_TRAIL_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Telemetry sinks selectable through ENGINE_TELEMETRY.
const (
	TelemetryLog        = "log"
	TelemetryWebhook    = "webhook"
	TelemetryOpenSearch = "opensearch"
)

// Config is shared by every engine in the registry.
type Config struct {
	BufferCapacity   int           `env:"ENGINE_BUFFER_CAPACITY" envDefault:"20"`
	TrailCapacity    int           `env:"ENGINE_TRAIL_CAPACITY" envDefault:"1000"`
	TestMode         bool          `env:"ENGINE_TEST_MODE" envDefault:"false"`
	SinkTimeout      time.Duration `env:"ENGINE_SINK_TIMEOUT" envDefault:"5s"`
	TrailBackend     string        `env:"ENGINE_TRAIL_BACKEND" envDefault:"memory"`
	EscalationPolicy string        `env:"ENGINE_ESCALATION_POLICY"` // optional YAML file
	Telemetry        []string      `env:"ENGINE_TELEMETRY" envSeparator:"," envDefault:"log"`
	FilterPII        bool          `env:"ENGINE_FILTER_PII" envDefault:"true"`
	SyncBatchSize    int           `env:"ENGINE_SYNC_BATCH_SIZE" envDefault:"50"`

	// Batching of remote telemetry sinks.
	TelemetryBufferSize   int           `env:"ENGINE_TELEMETRY_BUFFER_SIZE" envDefault:"1000"`
	TelemetryBatchSize    int           `env:"ENGINE_TELEMETRY_BATCH_SIZE" envDefault:"100"`
	TelemetryBatchTimeout time.Duration `env:"ENGINE_TELEMETRY_BATCH_TIMEOUT" envDefault:"1s"`
}
