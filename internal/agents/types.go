package agents

import "context"

// UserContext is the per-request context derived from the inbound text and
// the stored user profile. It exists only for the duration of one request.
type UserContext struct {
	Identity  string
	Name      string
	Crop      string
	Region    string
	SoilType  string
	FarmStage string
	Latitude  float64
	Longitude float64
	HasCoords bool
}

// Response is the outcome of one generator invocation. Confidence derives
// from retrieval density and query complexity, not from the model's own
// certainty.
type Response struct {
	Generator  string
	Text       string
	Confidence float64
	Metadata   map[string]string
}

// Apology is the fixed response used whenever a generator cannot answer.
const Apology = "I'm sorry, I couldn't process that request. Could you rephrase your question?"

// WeatherService is the external weather collaborator boundary.
type WeatherService interface {
	Current(ctx context.Context, lat, lon float64) (string, error)
}

// SoilService is the external soil-classification collaborator boundary.
type SoilService interface {
	Classify(ctx context.Context, lat, lon float64) (string, error)
}

// MarketService is the external market-data collaborator boundary.
type MarketService interface {
	Prices(ctx context.Context, commodity string) (string, error)
}
