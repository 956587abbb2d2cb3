package models

// CompositeRequest is the query for the composite endpoint.
type CompositeRequest struct {
	Days   int `query:"days" json:"days" default:"360" validate:"gte=1,lte=3650"`
	Window int `query:"window" json:"window" default:"14" validate:"gte=1,lte=365"`
}

// CompositeResponse is the body returned by the composite endpoint.
type CompositeResponse struct {
	Entities    []string       `json:"entities"`
	Rows        []CompositeRow `json:"rows"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// TVLRequest is the query for the protocol TVL endpoint. Protocols is a
// comma separated list; empty selects the configured protocols.
type TVLRequest struct {
	Protocols string `query:"protocols" json:"protocols"`
}

// TVLResponse is the body returned by the protocol TVL endpoint.
type TVLResponse struct {
	Entities    []string     `json:"entities"`
	Rows        []ValueRow   `json:"rows"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
