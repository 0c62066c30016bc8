package webstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNotFound          = errors.New("webstore: not found")
	ErrMissingKey        = errors.New("webstore: key is required")
	ErrMissingNamespace  = errors.New("webstore: namespace is required")
	ErrInvalidExpiration = errors.New("webstore: invalid expiration")
	ErrCorruptRecord     = errors.New("webstore: corrupt record")
	ErrUnknownKind       = errors.New("webstore: unknown store kind")
)

// Driver is the synchronous key-value collaborator a Store persists envelopes in.
// Get must return ErrNotFound for absent keys. Keys returns a snapshot in no
// particular order. Implementations must be thread-safe.
type Driver interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// Option customizes Store behavior.
type Option func(*Store)

// WithDriver binds a storage driver to a store kind.
// Kinds without an explicit driver get their own in-memory driver.
func WithDriver(kind Kind, d Driver) Option {
	return func(s *Store) {
		if d != nil && kind.valid() {
			s.drivers[kind] = d
		}
	}
}

// WithLogger specifies a logger for usage errors, expiration warnings and driver failures.
// If not provided, warnings and errors go to stderr through zerolog.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogTag sets a tag prefix for all log messages.
// Useful for identifying the source of logs in multi-store scenarios.
func WithLogTag(tag string) Option {
	return func(s *Store) {
		s.logTag = tag
	}
}

// WithNamespace sets the initial ambient namespace.
func WithNamespace(name string) Option {
	return func(s *Store) {
		s.namespace = name
	}
}

// WithDefaultKind sets the store kind used when a call does not name one.
func WithDefaultKind(kind Kind) Option {
	return func(s *Store) {
		if kind.valid() {
			s.kind = kind
		}
	}
}

// WithClock replaces time.Now for expiration arithmetic and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictNamespaceMatch makes ClearNamespace remove only keys that start
// with "namespace::" instead of every key containing it.
func WithStrictNamespaceMatch() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// Config is the ambient state changed by Configure.
type Config struct {
	Namespace string
	Kind      Kind
}

// Report describes a completed Set.
type Report struct {
	// Key is the fully-qualified key the value was written under.
	Key  string
	Kind Kind
	// ExpiresAt is zero when the record never expires.
	ExpiresAt time.Time
	// Warnings lists input problems that were tolerated, such as an
	// unparseable expiration that degraded to "never expires".
	Warnings []error
}

// Degraded reports whether the write went through with tolerated problems.
func (r Report) Degraded() bool {
	return len(r.Warnings) > 0
}

// Store is the expiration-aware, namespaced facade over one Driver per Kind.
// It is safe for concurrent use; listeners run on the goroutine that
// triggered the change.
type Store struct {
	drivers  map[Kind]Driver
	notifier *notifier
	logger   Logger
	logTag   string
	now      func() time.Time
	strict   bool

	mu        sync.RWMutex
	namespace string
	kind      Kind
}

// New creates a Store. Both kinds default to independent in-memory drivers.
func New(opts ...Option) *Store {
	s := &Store{
		drivers:  make(map[Kind]Driver, 2),
		notifier: newNotifier(),
		logger:   defaultLogger,
		now:      time.Now,
		kind:     Primary,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, k := range kinds {
		if _, ok := s.drivers[k]; !ok {
			s.drivers[k] = NewMemory()
		}
	}
	return s
}

// Configure replaces the ambient namespace and default store kind.
func (s *Store) Configure(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = cfg.Namespace
	if cfg.Kind.valid() {
		s.kind = cfg.Kind
	}
}

// SetNamespace changes the ambient namespace used by calls without InNamespace.
func (s *Store) SetNamespace(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = name
}

// Namespace returns the ambient namespace.
func (s *Store) Namespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace
}

// Driver returns the driver bound to kind.
func (s *Store) Driver(kind Kind) (Driver, error) {
	d, ok := s.drivers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return d, nil
}

func (s *Store) resolve(opts []CallOption) callOptions {
	s.mu.RLock()
	o := callOptions{namespace: s.namespace, kind: s.kind}
	s.mu.RUnlock()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (s *Store) logf(level string, ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.logTag != "" {
		msg = s.logTag + " " + msg
	}
	switch level {
	case "info":
		s.logger.Info(ctx, "%s", msg)
	case "warn":
		s.logger.Warn(ctx, "%s", msg)
	case "error":
		s.logger.Error(ctx, "%s", msg)
	case "debug":
		s.logger.Debug(ctx, "%s", msg)
	}
}

// Set stores value under key, replacing any previous record, and notifies
// listeners of the key with value.
//
// An empty key is logged and rejected with ErrMissingKey; nothing is written.
// An invalid expiration is logged as a warning, reported in Report.Warnings,
// and the value is stored without expiration.
func (s *Store) Set(ctx context.Context, key string, value any, opts ...CallOption) (Report, error) {
	if key == "" {
		s.logf("error", ctx, "Set: provide a key to store the value")
		return Report{}, ErrMissingKey
	}

	o := s.resolve(opts)
	report := Report{Key: composeKey(o.namespace, key), Kind: o.kind}

	if o.expiration != nil {
		expiresAt, err := o.expiration.resolve(s.now())
		if err != nil {
			s.logf("warn", ctx, "Set %s: %v, value stored without expiration", report.Key, err)
			report.Warnings = append(report.Warnings, err)
		} else {
			report.ExpiresAt = expiresAt
		}
	}

	d, err := s.Driver(o.kind)
	if err != nil {
		s.logf("error", ctx, "Set %s failed: %v", report.Key, err)
		return report, err
	}

	data, err := encodeRecord(value, report.ExpiresAt)
	if err != nil {
		s.logf("error", ctx, "Set %s failed: %v", report.Key, err)
		return report, err
	}

	if err := d.Set(ctx, report.Key, data); err != nil {
		s.logf("error", ctx, "Set %s failed: %v", report.Key, err)
		return report, err
	}

	s.notifier.publish(report.Key, value)
	return report, nil
}

// load reads and decodes the record for key. A nil record means absent,
// corrupt or expired; an expired record is removed (and its listeners
// notified) before returning.
func (s *Store) load(ctx context.Context, key string, opts []CallOption) (*record, error) {
	o := s.resolve(opts)
	fullKey := composeKey(o.namespace, key)

	d, err := s.Driver(o.kind)
	if err != nil {
		return nil, err
	}

	data, err := d.Get(ctx, fullKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logf("error", ctx, "Get %s failed: %v", fullKey, err)
		return nil, err
	}

	rec, err := decodeRecord(data)
	if err != nil {
		s.logf("debug", ctx, "Get %s: %v", fullKey, err)
		return nil, nil
	}

	if rec.expired(s.now()) {
		if err := s.remove(ctx, d, fullKey); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return rec, nil
}

// Get returns the value stored under key, or nil when the key is absent,
// expired or holds a corrupt record. Plain values come back in their
// generic JSON form (map[string]any, []any, float64, string, bool);
// tagged collections come back as Map or Set.
func (s *Store) Get(ctx context.Context, key string, opts ...CallOption) (any, error) {
	rec, err := s.load(ctx, key, opts)
	if err != nil || rec == nil {
		return nil, err
	}
	v, err := rec.decode()
	if err != nil {
		return nil, nil
	}
	return v, nil
}

// GetInto decodes the value stored under key into dst, which must be a
// pointer. It reports false when there is nothing to decode.
func (s *Store) GetInto(ctx context.Context, key string, dst any, opts ...CallOption) (bool, error) {
	rec, err := s.load(ctx, key, opts)
	if err != nil || rec == nil {
		return false, err
	}
	if err := rec.decodeInto(dst); err != nil {
		return false, fmt.Errorf("webstore: decode %q: %w", key, err)
	}
	return true, nil
}

// GetAs is the typed form of Get.
func GetAs[T any](ctx context.Context, s *Store, key string, opts ...CallOption) (T, bool, error) {
	var v T
	ok, err := s.GetInto(ctx, key, &v, opts...)
	return v, ok, err
}

// Remove deletes key and notifies its listeners with nil, whether or not
// the key existed.
func (s *Store) Remove(ctx context.Context, key string, opts ...CallOption) error {
	o := s.resolve(opts)
	d, err := s.Driver(o.kind)
	if err != nil {
		return err
	}
	return s.remove(ctx, d, composeKey(o.namespace, key))
}

func (s *Store) remove(ctx context.Context, d Driver, fullKey string) error {
	if err := d.Delete(ctx, fullKey); err != nil {
		s.logf("error", ctx, "Remove %s failed: %v", fullKey, err)
		return err
	}
	s.notifier.publish(fullKey, nil)
	return nil
}

// GetAndRemove is Get followed by Remove; it returns what Get returned.
func (s *Store) GetAndRemove(ctx context.Context, key string, opts ...CallOption) (any, error) {
	v, err := s.Get(ctx, key, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Remove(ctx, key, opts...); err != nil {
		return nil, err
	}
	return v, nil
}

// Keys returns every raw key of the selected kind, including records that
// have expired but were not read since.
func (s *Store) Keys(ctx context.Context, opts ...CallOption) ([]string, error) {
	o := s.resolve(opts)
	d, err := s.Driver(o.kind)
	if err != nil {
		return nil, err
	}
	keys, err := d.Keys(ctx)
	if err != nil {
		s.logf("error", ctx, "Keys failed: %v", err)
	}
	return keys, err
}

// ClearNamespace removes every key of the selected kind that belongs to the
// namespace chosen with InNamespace (or the ambient one), notifying nil for
// each. By default membership is substring containment of "namespace::",
// so unrelated keys embedding that token are swept too; see
// WithStrictNamespaceMatch.
func (s *Store) ClearNamespace(ctx context.Context, opts ...CallOption) error {
	o := s.resolve(opts)
	if o.namespace == "" {
		s.logf("error", ctx, "ClearNamespace: provide a namespace to clear")
		return ErrMissingNamespace
	}

	d, err := s.Driver(o.kind)
	if err != nil {
		return err
	}

	keys, err := d.Keys(ctx)
	if err != nil {
		s.logf("error", ctx, "ClearNamespace %s failed: %v", o.namespace, err)
		return err
	}

	var errs []error
	for _, k := range keys {
		if !inNamespace(k, o.namespace, s.strict) {
			continue
		}
		if err := s.remove(ctx, d, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearAll wipes the selected kind entirely, then notifies nil once to
// every key that has listeners.
func (s *Store) ClearAll(ctx context.Context, opts ...CallOption) error {
	o := s.resolve(opts)
	d, err := s.Driver(o.kind)
	if err != nil {
		return err
	}
	if err := d.Clear(ctx); err != nil {
		s.logf("error", ctx, "ClearAll %s failed: %v", o.kind, err)
		return err
	}
	s.notifier.publishAll(nil)
	return nil
}

// On registers fn for changes of key, composed with InNamespace or the
// ambient namespace. Listeners run synchronously in registration order.
// A panicking listener is not recovered: it unwinds through the Set,
// Remove or Clear call that triggered it and later listeners do not run.
func (s *Store) On(key string, fn Listener, opts ...CallOption) Subscription {
	o := s.resolve(opts)
	return s.notifier.subscribe(composeKey(o.namespace, key), fn)
}
