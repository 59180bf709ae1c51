// Package tracer wraps OpenTelemetry spans behind a two-method interface so
// services can be traced without importing the SDK. Spans are dropped until a
// provider is installed globally.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span is an in-flight operation. End must be called exactly once.
type Span interface {
	// End closes the span, recording err as the failure cause when non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer opens spans and is safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a span key/value pair.
type Attribute = attribute.KeyValue

func String(key, value string) Attribute      { return attribute.String(key, value) }
func Bool(key string, value bool) Attribute   { return attribute.Bool(key, value) }
func Int(key string, value int) Attribute     { return attribute.Int(key, value) }
func Float64(key string, v float64) Attribute { return attribute.Float64(key, v) }

// Duration records value in whole milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

// Span names used by the donor service.
const (
	SpanDonorEligibility = "donor.eligibility"
	SpanDonorStatistics  = "donor.statistics"
	SpanDonorList        = "donor.list"
)

// Attribute keys used by the donor service.
const (
	AttrDonorID     = "donor.id"
	AttrEligible    = "eligibility.eligible"
	AttrReasonCode  = "eligibility.reason_code"
	AttrDonorCount  = "donor.count"
	AttrPage        = "page.number"
	AttrPerPage     = "page.per_page"
	AttrOwnerScoped = "list.owner_scoped"
)
