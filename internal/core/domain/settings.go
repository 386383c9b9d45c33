package domain

import (
	"errors"
	"fmt"
)

const unknownDescription = "Unknown"

// SearchTransport selects how the search backend is called.
type SearchTransport string

// Available search transports.
const (
	// SearchTransportTyped uses the typed API client.
	SearchTransportTyped SearchTransport = "typed"

	// SearchTransportREST posts JSON to the REST endpoint with a bearer token.
	SearchTransportREST SearchTransport = "rest"
)

// IsValid returns true if the transport is recognised.
func (t SearchTransport) IsValid() bool {
	return t == SearchTransportTyped || t == SearchTransportREST
}

// String returns the string representation.
func (t SearchTransport) String() string {
	return string(t)
}

// GeneratorProvider identifies a generative-text service.
type GeneratorProvider string

// Available generator providers.
const (
	// GeneratorProviderVertex is Gemini on Vertex AI.
	GeneratorProviderVertex GeneratorProvider = "vertex"

	// GeneratorProviderOpenAI is an OpenAI-compatible chat completions API.
	GeneratorProviderOpenAI GeneratorProvider = "openai"

	// GeneratorProviderAnthropic is the Anthropic messages API.
	GeneratorProviderAnthropic GeneratorProvider = "anthropic"

	// GeneratorProviderOllama is a local Ollama server.
	GeneratorProviderOllama GeneratorProvider = "ollama"

	// GeneratorProviderNone disables generation. Backend summaries are used instead.
	GeneratorProviderNone GeneratorProvider = "none"
)

// IsValid returns true if the provider is recognised.
func (p GeneratorProvider) IsValid() bool {
	switch p {
	case GeneratorProviderVertex, GeneratorProviderOpenAI, GeneratorProviderAnthropic,
		GeneratorProviderOllama, GeneratorProviderNone:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p GeneratorProvider) RequiresAPIKey() bool {
	return p == GeneratorProviderOpenAI || p == GeneratorProviderAnthropic
}

// String returns the string representation.
func (p GeneratorProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p GeneratorProvider) Description() string {
	switch p {
	case GeneratorProviderVertex:
		return "Gemini (Vertex AI)"
	case GeneratorProviderOpenAI:
		return "OpenAI (cloud)"
	case GeneratorProviderAnthropic:
		return "Anthropic (cloud)"
	case GeneratorProviderOllama:
		return "Ollama (local)"
	case GeneratorProviderNone:
		return "Disabled (backend summary)"
	default:
		return unknownDescription
	}
}

// HistoryBackend selects the query history store.
type HistoryBackend string

// Available history backends.
const (
	HistoryBackendMemory    HistoryBackend = "memory"
	HistoryBackendSQLite    HistoryBackend = "sqlite"
	HistoryBackendFirestore HistoryBackend = "firestore"
	HistoryBackendBadger    HistoryBackend = "badger"
)

// IsValid returns true if the backend is recognised.
func (b HistoryBackend) IsValid() bool {
	switch b {
	case HistoryBackendMemory, HistoryBackendSQLite, HistoryBackendFirestore, HistoryBackendBadger:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b HistoryBackend) String() string {
	return string(b)
}

// AuthMode selects where Google access tokens come from.
type AuthMode string

// Available auth modes.
const (
	// AuthModeADC uses Application Default Credentials.
	AuthModeADC AuthMode = "adc"

	// AuthModeMetadata uses the compute metadata server.
	AuthModeMetadata AuthMode = "metadata"

	// AuthModeStatic uses a fixed access token.
	AuthModeStatic AuthMode = "static"
)

// IsValid returns true if the auth mode is recognised.
func (m AuthMode) IsValid() bool {
	return m == AuthModeADC || m == AuthModeMetadata || m == AuthModeStatic
}

// DefaultBlocklist holds titles that are never shown as results.
var DefaultBlocklist = []string{"「事例の森」FAQ資料"}

// DefaultFAQLink is the FAQ document. It is kept out of the results by
// DefaultBlocklist and offered as a separate link instead.
const DefaultFAQLink = "https://storage.cloud.google.com/forest_of_usecase/customer_case/「事例の森」FAQ資料.pdf"

// SearchSettings holds search backend configuration.
type SearchSettings struct {
	ProjectID     string
	Location      string
	EngineID      string
	ServingConfig string

	// Transport selects the typed client or the REST endpoint.
	Transport SearchTransport

	// RetrieveCount is the page size requested from the backend.
	RetrieveCount int

	// DisplayCount caps the results shown after normalisation.
	DisplayCount int

	// MaxCited is the number of results cited in the generator prompt.
	MaxCited int

	// Blocklist holds exact titles to drop.
	Blocklist []string

	// RequestSummary asks the backend for its own summary.
	RequestSummary bool

	// RequestsPerSecond limits backend calls. Zero disables limiting.
	RequestsPerSecond float64

	// FAQLink is the help document offered by the UIs. Empty hides it.
	FAQLink string
}

// ServingConfigPath returns the full resource name of the serving config.
func (s SearchSettings) ServingConfigPath() string {
	return fmt.Sprintf("projects/%s/locations/%s/collections/default_collection/engines/%s/servingConfigs/%s",
		s.ProjectID, s.Location, s.EngineID, s.ServingConfig)
}

// GeneratorSettings holds generative-text backend configuration.
type GeneratorSettings struct {
	Provider  GeneratorProvider
	ProjectID string
	Location  string

	// Model is empty to use the provider's default model.
	Model string

	// APIKey and BaseURL are used by the HTTP providers.
	APIKey  string
	BaseURL string

	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// IsConfigured returns true if a generator should be constructed.
func (g GeneratorSettings) IsConfigured() bool {
	if !g.Provider.IsValid() || g.Provider == GeneratorProviderNone {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// HistorySettings holds query history store configuration.
type HistorySettings struct {
	Backend HistoryBackend

	// Path is the database file (sqlite) or directory (badger).
	Path string

	FirestoreProjectID string
	Collection         string

	// ScanLimit caps the number of pinned entries read per listing.
	ScanLimit int

	// DisplayLimit is the default listing size.
	DisplayLimit int
}

// AuthSettings holds Google credential configuration.
type AuthSettings struct {
	Mode        AuthMode
	AccessToken string
}

// WebSettings holds HTTP surface configuration.
type WebSettings struct {
	Addr         string
	AllowOrigins []string
}

// AppConfig holds all application configuration.
type AppConfig struct {
	Search    SearchSettings
	Generator GeneratorSettings
	History   HistorySettings
	Auth      AuthSettings
	Web       WebSettings
}

// DefaultAppConfig returns configuration with the built-in defaults.
// Project, location and engine identifiers have no default.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Search: SearchSettings{
			ServingConfig:     "default_search",
			Transport:         SearchTransportTyped,
			RetrieveCount:     30,
			DisplayCount:      20,
			MaxCited:          5,
			Blocklist:         append([]string(nil), DefaultBlocklist...),
			RequestsPerSecond: 5,
			FAQLink:           DefaultFAQLink,
		},
		Generator: GeneratorSettings{
			Provider:        GeneratorProviderVertex,
			Location:        "us-west1",
			Temperature:     0,
			TopP:            1,
			TopK:            32,
			MaxOutputTokens: 2048,
		},
		History: HistorySettings{
			Backend:      HistoryBackendSQLite,
			Collection:   "Queries",
			ScanLimit:    1000,
			DisplayLimit: 10,
		},
		Auth: AuthSettings{
			Mode: AuthModeADC,
		},
		Web: WebSettings{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
		},
	}
}

// Validate reports every missing or invalid setting at once.
func (c AppConfig) Validate() error {
	var errs []error
	missing := func(key string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingConfig, key))
	}
	invalid := func(key, value string) {
		errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidInput, key, value))
	}

	if c.Search.ProjectID == "" {
		missing("PROJECT_ID")
	}
	if c.Search.Location == "" {
		missing("SEARCH_LOCATION")
	}
	if c.Search.EngineID == "" {
		missing("SEARCH_ENGINE_ID")
	}
	if !c.Search.Transport.IsValid() {
		invalid("search.transport", string(c.Search.Transport))
	}
	if c.Search.DisplayCount <= 0 {
		invalid("search.display_count", fmt.Sprint(c.Search.DisplayCount))
	}

	switch c.Generator.Provider {
	case GeneratorProviderVertex:
		if c.Generator.ProjectID == "" {
			missing("GENERATOR_PROJECT_ID")
		}
		if c.Generator.Location == "" {
			missing("GENERATOR_LOCATION")
		}
	case GeneratorProviderOpenAI:
		if c.Generator.APIKey == "" {
			missing("OPENAI_API_KEY")
		}
	case GeneratorProviderAnthropic:
		if c.Generator.APIKey == "" {
			missing("ANTHROPIC_API_KEY")
		}
	case GeneratorProviderOllama, GeneratorProviderNone:
	default:
		invalid("generator.provider", string(c.Generator.Provider))
	}

	switch c.History.Backend {
	case HistoryBackendFirestore:
		if c.History.FirestoreProjectID == "" {
			missing("FIRESTORE_PROJECT_ID")
		}
	case HistoryBackendMemory, HistoryBackendSQLite, HistoryBackendBadger:
	default:
		invalid("history.backend", string(c.History.Backend))
	}

	if !c.Auth.Mode.IsValid() {
		invalid("auth.mode", string(c.Auth.Mode))
	} else if c.Auth.Mode == AuthModeStatic && c.Auth.AccessToken == "" {
		missing("ACCESS_TOKEN")
	}

	return errors.Join(errs...)
}
