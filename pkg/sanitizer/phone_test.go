package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+5511987654321",
			want:  "+5511987654321",
		},
		{
			name:  "with spaces",
			input: "+55 11 98765 4321",
			want:  "+5511987654321",
		},
		{
			name:  "with dashes",
			input: "+55-11-98765-4321",
			want:  "+5511987654321",
		},
		{
			name:  "with parentheses",
			input: "+55 (11) 98765-4321",
			want:  "+5511987654321",
		},
		{
			name:  "us number with parentheses",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +5511987654321  ",
			want:  "+5511987654321",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "national format without plus",
			input: "(11) 98765-4321",
			want:  "+5511987654321",
		},
		{
			name:  "mixed special chars",
			input: " +55-11.98765 4321 ",
			want:  "+5511987654321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
