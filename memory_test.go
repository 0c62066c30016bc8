package webstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestNewMemory(t *testing.T) {
	d := NewMemory()
	if d == nil {
		t.Fatal("NewMemory returned nil")
	}
	if d.data == nil {
		t.Error("NewMemory did not initialize data map")
	}
}

func TestMemory_SetGet(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	if err := d.Set(ctx, "key1", []byte("value1")); err != nil {
		t.Errorf("Set returned error: %v", err)
	}

	data, err := d.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "value1" {
		t.Errorf("Get returned %q, want %q", data, "value1")
	}

	if err := d.Set(ctx, "key1", []byte("value2")); err != nil {
		t.Errorf("Set returned error: %v", err)
	}
	data, _ = d.Get(ctx, "key1")
	if string(data) != "value2" {
		t.Errorf("Set should overwrite, got %q", data)
	}
}

func TestMemory_Get_NotFound(t *testing.T) {
	d := NewMemory()
	_, err := d.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing key: expected ErrNotFound, got %v", err)
	}
}

func TestMemory_Clone(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	original := []byte("value")
	_ = d.Set(ctx, "key1", original)
	original[0] = 'X'

	data, _ := d.Get(ctx, "key1")
	if string(data) != "value" {
		t.Errorf("Set should clone input, got %q", data)
	}

	data[0] = 'Y'
	again, _ := d.Get(ctx, "key1")
	if string(again) != "value" {
		t.Errorf("Get should return a copy, got %q", again)
	}
}

func TestMemory_Delete(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	_ = d.Set(ctx, "key1", []byte("value1"))
	if err := d.Delete(ctx, "key1"); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}
	if _, err := d.Get(ctx, "key1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: expected ErrNotFound, got %v", err)
	}

	if err := d.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key returned error: %v", err)
	}
}

func TestMemory_KeysAndClear(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	for _, k := range []string{"b::2", "a::1", "plain"} {
		_ = d.Set(ctx, k, []byte("v"))
	}

	keys, err := d.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a::1", "b::2", "plain"}) {
		t.Errorf("Keys = %v", keys)
	}

	if err := d.Clear(ctx); err != nil {
		t.Errorf("Clear returned error: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", d.Len())
	}
	keys, _ = d.Keys(ctx)
	if len(keys) != 0 {
		t.Errorf("Keys after Clear = %v", keys)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key:%d", i)
			_ = d.Set(ctx, key, []byte("v"))
			_, _ = d.Get(ctx, key)
			_, _ = d.Keys(ctx)
		}(i)
	}
	wg.Wait()

	if d.Len() != 50 {
		t.Errorf("Len = %d, want 50", d.Len())
	}
}
