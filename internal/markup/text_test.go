package markup

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
		{
			name: "plain text passes through",
			in:   "Paris is beautiful",
			want: "Paris is beautiful",
		},
		{
			name: "paragraphs",
			in:   "<p>First paragraph.</p><p>Second   paragraph.</p>",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "inline elements keep spacing",
			in:   "<p>Visit <b>Paris</b> and <i>Rome</i>.</p>",
			want: "Visit Paris and Rome.",
		},
		{
			name: "link text is kept",
			in:   `<p>See <a href="https://example.com/trip">the trip notes</a> for details.</p>`,
			want: "See the trip notes for details.",
		},
		{
			name: "images scripts and styles are dropped",
			in:   `<style>p{color:red}</style><p>Hello<img src="x.png" alt="x"></p><script>alert(1)</script>`,
			want: "Hello",
		},
		{
			name: "list items on separate lines",
			in:   "<ul><li>Louvre</li><li>Eiffel Tower</li></ul>",
			want: "Louvre\nEiffel Tower",
		},
		{
			name: "line breaks",
			in:   "line one<br>line two",
			want: "line one\nline two",
		},
		{
			name: "pre keeps whitespace",
			in:   "<p>Code:</p><pre>if x {\n    y()\n}</pre>",
			want: "Code:\n\nif x {\n    y()\n}",
		},
		{
			name: "entities are decoded",
			in:   "<p>Fish &amp; chips &lt;3</p>",
			want: "Fish & chips <3",
		},
		{
			name: "runs of empty blocks collapse",
			in:   "<p>a</p><p></p><p></p><div></div><p>b</p>",
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		in      string
		want    string
		wantErr bool
	}{
		{name: "html", format: FormatHTML, in: "<p>Trip</p>", want: "Trip"},
		{name: "empty format is html", format: "", in: "<h1>Trip</h1>", want: "Trip"},
		{name: "markdown", format: FormatMarkdown, in: "# Trip\n\nParis is **beautiful**", want: "Trip\n\nParis is beautiful"},
		{name: "text is not parsed", format: FormatText, in: "  a <b> c  ", want: "a <b> c"},
		{name: "unknown format", format: "rtf", in: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToPlainText(tt.format, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("ToPlainText() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPlainText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}
