package prompt

import (
	"strings"
	"testing"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
)

func TestGetUserPrompt(t *testing.T) {
	p := GetUserPrompt(ai.Request{Content: "bomb at 5pm", Source: "email", FileType: "eml"})
	for _, want := range []string{
		"Content to analyze:\nbomb at 5pm\n",
		"- Source: email",
		"- File type: eml",
		`"forensic_linguistics": <number 0-100>`,
		"0-25% (likely hoax)",
		"Respond with valid JSON only.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestGetUserPrompt_Defaults(t *testing.T) {
	p := GetUserPrompt(ai.Request{Content: "hi"})
	if !strings.Contains(p, "- Source: text") || !strings.Contains(p, "- File type: N/A") {
		t.Errorf("Expected default context, got:\n%s", p)
	}
	if strings.Contains(p, "%!") {
		t.Error("Prompt contains a formatting error")
	}
}
