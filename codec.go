package webstore

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// valueKind is resolved once when encoding and matched when decoding.
// Adding a collection kind means a new constant, a tag and a case in
// classify and decodeTagged.
type valueKind int

const (
	kindPlain valueKind = iota
	kindMap
	kindSet
)

var kindTags = map[valueKind]string{
	kindMap: "Map",
	kindSet: "Set",
}

func kindOfTag(tag string) valueKind {
	for k, t := range kindTags {
		if t == tag {
			return k
		}
	}
	return kindPlain
}

func classify(v any) (valueKind, any) {
	switch t := v.(type) {
	case Map:
		return kindMap, t
	case *Map:
		if t != nil {
			return kindMap, *t
		}
	case Set:
		return kindSet, []any(t)
	case *Set:
		if t != nil {
			return kindSet, []any(*t)
		}
	}
	return kindPlain, v
}

// taggedValue is the {"__type": ..., "value": ...} wrapper for collections
// that plain JSON cannot tell apart from arrays.
type taggedValue struct {
	Type  string `json:"__type"`
	Value any    `json:"value"`
}

type taggedRaw struct {
	Type  string          `json:"__type"`
	Value json.RawMessage `json:"value"`
}

type recordMeta struct {
	// ExpiresAt is epoch milliseconds; null means never.
	ExpiresAt *int64 `json:"expiresAt"`
}

type recordOut struct {
	Value any        `json:"value"`
	Meta  recordMeta `json:"meta"`
}

// record is a decoded envelope: {"value": <any>, "meta": {"expiresAt": <ms|null>}}.
type record struct {
	Value json.RawMessage `json:"value"`
	Meta  recordMeta      `json:"meta"`
}

func encodeRecord(value any, expiresAt time.Time) ([]byte, error) {
	kind, payload := classify(value)
	out := recordOut{Value: payload}
	if tag, ok := kindTags[kind]; ok {
		out.Value = taggedValue{Type: tag, Value: payload}
	}
	if !expiresAt.IsZero() {
		ms := expiresAt.UnixMilli()
		out.Meta.ExpiresAt = &ms
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("webstore: encode value: %w", err)
	}
	return data, nil
}

// decodeRecord parses an envelope. Anything that is not a JSON object with
// a "value" member is ErrCorruptRecord.
func decodeRecord(data []byte) (*record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if len(rec.Value) == 0 {
		return nil, fmt.Errorf("%w: missing value", ErrCorruptRecord)
	}
	return &rec, nil
}

func (r *record) expiresAt() time.Time {
	if r.Meta.ExpiresAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.Meta.ExpiresAt)
}

// expired reports whether now is strictly past the expiry instant.
func (r *record) expired(now time.Time) bool {
	at := r.expiresAt()
	return !at.IsZero() && now.After(at)
}

func (r *record) tagged() (valueKind, json.RawMessage) {
	raw := bytes.TrimSpace(r.Value)
	if len(raw) == 0 || raw[0] != '{' {
		return kindPlain, r.Value
	}
	var t taggedRaw
	if err := json.Unmarshal(raw, &t); err != nil || t.Type == "" || len(t.Value) == 0 {
		return kindPlain, r.Value
	}
	kind := kindOfTag(t.Type)
	if kind == kindPlain {
		return kindPlain, r.Value
	}
	return kind, t.Value
}

func (r *record) decode() (any, error) {
	kind, raw := r.tagged()
	switch kind {
	case kindMap:
		var m Map
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		return m, nil
	case kindSet:
		var s Set
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		return s, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		return v, nil
	}
}

// decodeInto unmarshals the payload into dst. Tagged collections decode
// from their entries array, so a Set fits *Set or any *[]T and a Map fits
// *Map or *[][2]T.
func (r *record) decodeInto(dst any) error {
	_, raw := r.tagged()
	return json.Unmarshal(raw, dst)
}
