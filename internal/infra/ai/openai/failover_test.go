package openai

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
)

type stubProvider struct {
	name  string
	out   string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Analyze(context.Context, ai.Request) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestFailover_NoProviders(t *testing.T) {
	_, err := NewFailover(nil).Analyze(context.Background(), ai.Request{Content: "x"})
	if !errors.Is(err, ai.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestFailover_PrimaryWins(t *testing.T) {
	groq := &stubProvider{name: "groq", out: "g"}
	deepseek := &stubProvider{name: "deepseek", out: "d"}
	f := NewFailover(nil, groq, deepseek)

	out, err := f.Analyze(context.Background(), ai.Request{Content: "x"})
	if err != nil || out != "g" {
		t.Fatalf("Expected primary output, got %q %v", out, err)
	}
	if deepseek.calls != 0 {
		t.Error("Secondary should not be called when primary succeeds")
	}
	if !reflect.DeepEqual(f.Providers(), []string{"groq", "deepseek"}) {
		t.Errorf("Unexpected provider order %v", f.Providers())
	}
}

func TestFailover_FallsThrough(t *testing.T) {
	groq := &stubProvider{name: "groq", err: errors.New("502")}
	deepseek := &stubProvider{name: "deepseek", out: "d"}

	out, err := NewFailover(nil, groq, deepseek).Analyze(context.Background(), ai.Request{Content: "x"})
	if err != nil || out != "d" {
		t.Fatalf("Expected secondary output, got %q %v", out, err)
	}
}

func TestFailover_AllFail(t *testing.T) {
	groq := &stubProvider{name: "groq", err: ai.ErrQuotaExceeded}
	deepseek := &stubProvider{name: "deepseek", err: errors.New("down")}

	_, err := NewFailover(nil, groq, deepseek).Analyze(context.Background(), ai.Request{Content: "x"})
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Errorf("Expected joined error to keep ErrQuotaExceeded, got %v", err)
	}
}

func TestFailover_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	groq := &stubProvider{name: "groq", err: context.Canceled}
	deepseek := &stubProvider{name: "deepseek", out: "d"}

	if _, err := NewFailover(nil, groq, deepseek).Analyze(ctx, ai.Request{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if deepseek.calls != 0 {
		t.Error("Expected no further providers after cancellation")
	}
}
