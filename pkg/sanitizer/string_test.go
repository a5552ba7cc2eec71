package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Dra. Ana Souza  ",
			want:  "Dra. Ana Souza",
		},
		{
			name:  "multiple spaces between words",
			input: "Dra. Ana    Souza",
			want:  "Dra. Ana Souza",
		},
		{
			name:  "tabs and newlines",
			input: "Dra. Ana\t\nSouza",
			want:  "Dra. Ana Souza",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve accents",
			input: " Dr. João Gonçalves ",
			want:  "Dr. João Gonçalves",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameForComparison(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "convert to lowercase",
			input: "Ana Souza",
			want:  "ana souza",
		},
		{
			name:  "collapse multiple spaces",
			input: "Ana   Souza",
			want:  "ana souza",
		},
		{
			name:  "preserve special chars but lowercase",
			input: "João Gonçalves",
			want:  "joão gonçalves",
		},
		{
			name:  "trim and lowercase",
			input: "  ANA  Souza  ",
			want:  "ana souza",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNameForComparison(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeNameForComparison(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpecialtyKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become underscores",
			input: "Clínica Geral",
			want:  "clínica_geral",
		},
		{
			name:  "hyphenated specialty",
			input: "Físio-Terapia",
			want:  "físio_terapia",
		},
		{
			name:  "surrounding punctuation stripped",
			input: "  (Nutrição)  ",
			want:  "nutrição",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpecialtyKey(tt.input)
			if got != tt.want {
				t.Errorf("SpecialtyKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
