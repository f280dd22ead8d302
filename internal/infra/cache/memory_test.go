package cache

import (
	"testing"
	"time"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
)

func TestKey_SeparatesFields(t *testing.T) {
	a := Key("text", "", "bomb")
	b := Key("email", "", "bomb")
	c := Key("text", "bomb", "")
	if a == b || a == c || b == c {
		t.Errorf("Expected distinct keys, got %s %s %s", a, b, c)
	}
	if a != Key("text", "", "bomb") {
		t.Error("Expected deterministic key")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
}

func TestResponseCache_GetSet(t *testing.T) {
	c := NewResponseCache(time.Minute)
	req := ai.Request{Content: "hello", Source: "text"}

	if _, ok := c.Get(req); ok {
		t.Fatal("Expected miss on empty cache")
	}
	c.Set(req, `{"confidence":10}`)
	if _, ok := c.Get(ai.Request{Content: "hello", Source: "email"}); ok {
		t.Error("Expected miss for a different source")
	}
	got, ok := c.Get(req)
	if !ok || got != `{"confidence":10}` {
		t.Errorf("Expected hit with stored value, got %q %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after flush, got %d", c.Len())
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	c := NewResponseCache(10 * time.Millisecond)
	req := ai.Request{Content: "v"}
	c.Set(req, "v")
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(req); ok {
		t.Error("Expected entry to expire")
	}
}
