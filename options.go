package webstore

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects which of the Store's drivers a call addresses.
type Kind int

const (
	// Primary is the long-lived store, the default.
	Primary Kind = iota
	// Session is the short-lived store.
	Session
)

var kinds = []Kind{Primary, Session}

func (k Kind) valid() bool {
	return k == Primary || k == Session
}

func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Session:
		return "session"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "primary"/"local" and "session", case-insensitively.
// An empty string yields Primary.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "local":
		return Primary, nil
	case "session":
		return Session, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type callOptions struct {
	namespace  string
	kind       Kind
	expiration *Expiration
}

// CallOption customizes a single Store call.
type CallOption func(*callOptions)

// InNamespace addresses name instead of the ambient namespace.
// An empty name addresses un-namespaced keys.
func InNamespace(name string) CallOption {
	return func(o *callOptions) {
		o.namespace = name
	}
}

// InKind addresses the driver bound to kind instead of the default one.
func InKind(kind Kind) CallOption {
	return func(o *callOptions) {
		o.kind = kind
	}
}

// ExpiresIn sets a relative expiration such as "30s", "15m", "20h" or "7d".
// Only Set honors it.
func ExpiresIn(expr string) CallOption {
	return func(o *callOptions) {
		e := After(expr)
		o.expiration = &e
	}
}

// ExpiresAt sets an absolute expiration instant. Only Set honors it.
func ExpiresAt(t time.Time) CallOption {
	return func(o *callOptions) {
		e := At(t)
		o.expiration = &e
	}
}
