package webstore

import (
	"reflect"
	"testing"
)

func TestNotifier_Order(t *testing.T) {
	n := newNotifier()
	var got []string

	n.subscribe("k", func(v any) { got = append(got, "first:"+v.(string)) })
	n.subscribe("k", func(v any) { got = append(got, "second:"+v.(string)) })
	n.subscribe("other", func(v any) { got = append(got, "other") })

	n.publish("k", "x")

	if !reflect.DeepEqual(got, []string{"first:x", "second:x"}) {
		t.Errorf("deliveries = %v", got)
	}
}

func TestNotifier_SameFunctionTwice(t *testing.T) {
	n := newNotifier()
	count := 0
	fn := func(any) { count++ }

	a := n.subscribe("k", fn)
	b := n.subscribe("k", fn)
	if a.ID() == b.ID() {
		t.Error("subscriptions should have distinct ids")
	}

	n.publish("k", 1)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := newNotifier()
	var got []int

	a := n.subscribe("k", func(any) { got = append(got, 1) })
	n.subscribe("k", func(any) { got = append(got, 2) })

	a.Unsubscribe()
	a.Unsubscribe()
	n.publish("k", nil)

	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("deliveries = %v", got)
	}
}

func TestNotifier_NilListener(t *testing.T) {
	n := newNotifier()
	sub := n.subscribe("k", nil)
	if sub.ID() != "" {
		t.Errorf("nil listener should be rejected, got id %q", sub.ID())
	}
	sub.Unsubscribe()
	n.publish("k", 1)
}

func TestNotifier_PublishAll(t *testing.T) {
	n := newNotifier()
	var keys []string

	n.subscribe("b", func(v any) { keys = append(keys, "b") })
	n.subscribe("a", func(v any) { keys = append(keys, "a") })
	gone := n.subscribe("c", func(v any) { keys = append(keys, "c") })
	gone.Unsubscribe()

	n.publishAll(nil)

	if !reflect.DeepEqual(keys, []string{"b", "a"}) {
		t.Errorf("publishAll delivered to %v", keys)
	}
}
