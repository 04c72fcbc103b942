package errs

import "fmt"

// Kind is the closed set of abstract error kinds every layer above storage
// and transport reasons about. HTTP status mapping lives in internal/web.
type Kind string

const (
	Unauthenticated   Kind = "unauthenticated"
	Forbidden         Kind = "forbidden"
	NotFound          Kind = "not_found"
	Conflict          Kind = "conflict"
	Validation        Kind = "validation"
	Deprecated        Kind = "deprecated"
	UpstreamTransient Kind = "upstream_transient"
	UpstreamPermanent Kind = "upstream_permanent"
	StoreUnavailable  Kind = "store_unavailable"
	ArtifactInvalid   Kind = "artifact_invalid"
	RateLimited       Kind = "rate_limited"
	Internal          Kind = "internal"
)

// baseErr is the generic wrapper every typed error embeds, mirroring the
// teacher's baseMongoErr{message,txt} shape.
type baseErr struct {
	kind Kind
	msg  string
	err  error
}

func (e *baseErr) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *baseErr) Unwrap() error { return e.err }

func (e *baseErr) Kind() Kind { return e.kind }

// KindErr is a typed error carrying one of the closed Kind values.
type KindErr struct{ *baseErr }

func newKindErr(kind Kind, msg string, err error) *KindErr {
	return &KindErr{&baseErr{kind: kind, msg: msg, err: err}}
}

func NewUnauthenticated(msg string) *KindErr { return newKindErr(Unauthenticated, msg, nil) }
func NewForbidden(msg string) *KindErr       { return newKindErr(Forbidden, msg, nil) }
func NewNotFound(msg string) *KindErr        { return newKindErr(NotFound, msg, nil) }
func NewConflict(msg string) *KindErr        { return newKindErr(Conflict, msg, nil) }
func NewValidation(msg string) *KindErr      { return newKindErr(Validation, msg, nil) }
func NewDeprecated(msg string) *KindErr      { return newKindErr(Deprecated, msg, nil) }
func NewRateLimited(msg string) *KindErr     { return newKindErr(RateLimited, msg, nil) }
func NewArtifactInvalid(msg string) *KindErr { return newKindErr(ArtifactInvalid, msg, nil) }

func WrapUpstreamTransient(err error, msg string) *KindErr {
	return newKindErr(UpstreamTransient, msg, err)
}
func WrapUpstreamPermanent(err error, msg string) *KindErr {
	return newKindErr(UpstreamPermanent, msg, err)
}
func WrapStoreUnavailable(err error, msg string) *KindErr {
	return newKindErr(StoreUnavailable, msg, err)
}
func WrapInternal(err error, msg string) *KindErr {
	return newKindErr(Internal, msg, err)
}

// KindOf returns the Kind carried by err, walking Unwrap chains, and
// Internal if err carries no KindErr.
func KindOf(err error) Kind {
	for err != nil {
		if ke, ok := err.(*KindErr); ok {
			return ke.Kind()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Internal
}

// Is reports whether val carries the same Kind as target.
func Is(val error, target Kind) bool {
	return KindOf(val) == target
}
