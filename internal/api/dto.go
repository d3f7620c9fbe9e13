package api

// SampleRequest asks for map values at a batch of sky positions.
// Positions are either galactic (l,b) or equatorial J2000 (ra,dec)
// pairs in degrees; the two conventions cannot be mixed in one call.
type SampleRequest struct {
	Map         string    `json:"map,omitempty"`
	L           []float64 `json:"l,omitempty"`
	B           []float64 `json:"b,omitempty"`
	RA          []float64 `json:"ra,omitempty"`
	Dec         []float64 `json:"dec,omitempty"`
	Interpolate bool      `json:"interpolate,omitempty"`
	Bulk        bool      `json:"bulk,omitempty"`
}

// SampleResponse carries one value per requested position, in request
// order.
type SampleResponse struct {
	ID     string    `json:"id"`
	Map    string    `json:"map"`
	Values []float32 `json:"values"`
}

// MapInfo describes one available map product.
type MapInfo struct {
	Name  string `json:"name"`
	North string `json:"north"`
	South string `json:"south"`
}

// MapsResponse lists the catalog contents.
type MapsResponse struct {
	Dir  string    `json:"dir"`
	Maps []MapInfo `json:"maps"`
}

// ExtinctionRequest asks for the dust column toward one equatorial
// J2000 position.
type ExtinctionRequest struct {
	RA          float64 `json:"ra"`
	Dec         float64 `json:"dec"`
	Interpolate bool    `json:"interpolate,omitempty"`
}

// ExtinctionResponse carries E(B-V) and the per-band extinctions in
// magnitudes.
type ExtinctionResponse struct {
	ID     string             `json:"id"`
	EBV    float64            `json:"ebv"`
	EBVErr float64            `json:"ebv_err"`
	Bands  map[string]float64 `json:"bands"`
}

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	Error APIError `json:"error"`
}

// APIError is one error payload.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
