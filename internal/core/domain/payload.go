package domain

import "google.golang.org/protobuf/types/known/structpb"

// PayloadKind identifies the shape of a raw search backend response.
type PayloadKind int

const (
	// PayloadTyped is a response produced by the typed API client.
	PayloadTyped PayloadKind = iota + 1

	// PayloadFlat is a decoded JSON response from the REST endpoint.
	PayloadFlat
)

// String returns the string representation of the payload kind.
func (k PayloadKind) String() string {
	switch k {
	case PayloadTyped:
		return "typed"
	case PayloadFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// BackendPayload is a raw search backend response.
// The set of implementations is closed: *TypedPayload and FlatPayload.
type BackendPayload interface {
	Kind() PayloadKind
	sealed()
}

// TypedPayload is the response shape produced by the typed API client.
// Envelope metadata is typed; per-document metadata arrives in two
// structured bags.
type TypedPayload struct {
	TotalSize        int64
	AttributionToken string
	NextPageToken    string
	SummaryText      string
	Documents        []TypedDocument
}

// TypedDocument is one ranked document inside a TypedPayload.
type TypedDocument struct {
	// ID is the backend document ID.
	ID string

	// StructData holds the structured metadata imported with the document.
	// Nil for documents without structured metadata.
	StructData *structpb.Struct

	// DerivedStructData holds backend-derived fields (link, snippets, extractive passages).
	DerivedStructData *structpb.Struct
}

// Kind implements BackendPayload.
func (*TypedPayload) Kind() PayloadKind { return PayloadTyped }

func (*TypedPayload) sealed() {}

// FlatPayload is a REST response decoded into plain nested maps.
type FlatPayload map[string]any

// Kind implements BackendPayload.
func (FlatPayload) Kind() PayloadKind { return PayloadFlat }

func (FlatPayload) sealed() {}
