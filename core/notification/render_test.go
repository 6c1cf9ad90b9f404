package notification

import "testing"

func TestRenderPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]string
		want string
	}{
		{
			name: "simple substitution",
			tmpl: "Hello {{username}}",
			data: map[string]string{"username": "ada"},
			want: "Hello ada",
		},
		{
			name: "multiple placeholders",
			tmpl: "{{username}} joined {{committee}}",
			data: map[string]string{"username": "ada", "committee": "Research"},
			want: "ada joined Research",
		},
		{
			name: "repeated placeholder",
			tmpl: "{{username}}, {{username}}!",
			data: map[string]string{"username": "ada"},
			want: "ada, ada!",
		},
		{
			name: "whitespace inside braces",
			tmpl: "Hello {{ username }}",
			data: map[string]string{"username": "ada"},
			want: "Hello ada",
		},
		{
			name: "unknown placeholder left verbatim",
			tmpl: "Hello {{nickname}}",
			data: map[string]string{"username": "ada"},
			want: "Hello {{nickname}}",
		},
		{
			name: "no placeholders",
			tmpl: "plain text",
			data: map[string]string{"username": "ada"},
			want: "plain text",
		},
		{
			name: "nil data",
			tmpl: "Hello {{username}}",
			want: "Hello {{username}}",
		},
		{
			name: "empty value substitutes",
			tmpl: "Hello {{username}}!",
			data: map[string]string{"username": ""},
			want: "Hello !",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderPlaceholders(tt.tmpl, tt.data); got != tt.want {
				t.Errorf("RenderPlaceholders() = %q, want %q", got, tt.want)
			}
		})
	}
}
