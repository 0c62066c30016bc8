// Package webstore provides expiration-aware, namespaced JSON storage on top of a
// minimal synchronous key-value driver, with change listeners.
//
// # Overview
//
// A Store writes every value as a JSON envelope:
//
//	{"value": <payload>, "meta": {"expiresAt": <epoch ms or null>}}
//
// under a fully-qualified key "namespace::key" (or just "key" without a
// namespace). Expiry is lazy: a record past its instant is removed by the
// next Get that touches it, and until then it still occupies the driver.
//
// # Quick Start
//
//	s := webstore.New(webstore.WithNamespace("books"))
//	ctx := context.Background()
//
//	s.Set(ctx, "fiction", []string{"Dune", "Solaris"}, webstore.ExpiresIn("7d"))
//	v, _ := s.Get(ctx, "fiction") // []any{"Dune", "Solaris"}
//
//	titles, ok, _ := webstore.GetAs[[]string](ctx, s, "fiction")
//
// # Expiration
//
// ExpiresIn accepts "<n>s", "<n>m", "<n>h" and "<n>d". ExpiresAt accepts an
// absolute time.Time. Bad input never fails a Set: it is logged as a
// warning, returned in Report.Warnings, and the value is stored without
// expiration.
//
// # Collections
//
// Map (ordered entries with arbitrary keys) and Set are stored tagged as
// {"__type": "Map"|"Set", "value": [...]} and come back from Get with their
// own type.
//
// # Kinds
//
// A Store holds one Driver per Kind (Primary and Session), both in-memory by
// default. Sub-packages provide Redis and SQLite drivers.
//
// # Listeners
//
//	sub := s.On("fiction", func(v any) { fmt.Println("changed:", v) })
//	defer sub.Unsubscribe()
//
// Listeners run synchronously in registration order with the new value, or
// nil on removal. ClearAll notifies nil to every key that has listeners.
//
// # Error Handling
//
// Available errors: ErrNotFound (drivers only), ErrMissingKey,
// ErrMissingNamespace, ErrInvalidExpiration, ErrCorruptRecord, ErrUnknownKind.
// Corrupt records are never reported: Get treats them as absent.
package webstore
