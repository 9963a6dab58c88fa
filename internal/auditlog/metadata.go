package auditlog

import "context"

// Metadata describes the domain a command acted on. Commands attach it to
// their context once known; the audit writer reads it after the command
// returns.
type Metadata struct {
	Domain  string
	Port    int
	Service string
}

// Annotation marks a cobra command whose invocations are recorded.
const Annotation = "audit"

// Audited is the Annotations value for recorded commands.
func Audited() map[string]string {
	return map[string]string{Annotation: "true"}
}

type metadataKey struct{}

// WithMetadata merges meta into any metadata already on ctx. Zero fields in
// meta keep the existing values.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		Domain:  pick(meta.Domain, existing.Domain),
		Port:    existing.Port,
		Service: pick(meta.Service, existing.Service),
	}
	if meta.Port != 0 {
		merged.Port = meta.Port
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns the metadata on ctx, or the zero value.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}

type operationKey struct{}

// WithOperationID attaches the invocation's operation id to ctx.
func WithOperationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operationKey{}, id)
}

// OperationIDFromContext returns the operation id on ctx, or "".
func OperationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(operationKey{}).(string)
	return id
}
