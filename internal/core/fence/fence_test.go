package fence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyiyo/avatar-voice/internal/core/fence"
)

func TestStrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"xml fence", "```xml\n<speak>Hi</speak>\n```", "<speak>Hi</speak>"},
		{"json fence", "```json\n{\"a\":1}\n```\n", `{"a":1}`},
		{"bare fence", "```\nplain\n```", "plain"},
		{"no fence", "  <speak>Hi</speak>\n", "<speak>Hi</speak>"},
		{"missing closing fence", "```xml\n<speak>Hi</speak>", "<speak>Hi</speak>"},
		{"inner fences kept", "```\n```inner```\n```", "```inner```"},
		{"single line", "```<speak>x</speak>```", "<speak>x</speak>"},
		{"empty", "", ""},
		{"empty block", "```xml\n```", ""},
		{"prose before", "Here you go:\n```xml\n<speak>Hi</speak>\n```", "<speak>Hi</speak>"},
		{"prose after", "```xml\n<speak>Hi</speak>\n```\nHope this helps!", "<speak>Hi</speak>"},
		{"inline marker is not a fence", "use ``` to quote", "use ``` to quote"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, fence.Strip(tc.in))
		})
	}
}
