package linkify

// Notes:
// - Contact escapes before linkifying; Apply expects escaped input
// - idempotence is checked on Apply output for every case in the table

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestContact - Rule output
// ---------------------------------------------------------------------------

func TestContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Paris, France",
			want:  "Paris, France",
		},
		{
			name:  "newlines become breaks",
			input: "a\nb\r\nc",
			want:  "a<br>b<br>c",
		},
		{
			name:  "email",
			input: "jane@example.com",
			want:  `<a href="mailto:jane@example.com">jane@example.com</a>`,
		},
		{
			name:  "email after label",
			input: "Email: jane.doe+cv@mail.example.org",
			want:  `Email: <a href="mailto:jane.doe+cv@mail.example.org">jane.doe+cv@mail.example.org</a>`,
		},
		{
			name:  "emoji phone",
			input: "📞 (555) 123-4567",
			want:  `📞 <a href="tel:5551234567">(555) 123-4567</a>`,
		},
		{
			name:  "bare international phone",
			input: "+44 20 7946 0958",
			want:  `<a href="tel:+442079460958">+44 20 7946 0958</a>`,
		},
		{
			name:  "emoji linkedin",
			input: "🔗 https://www.linkedin.com/in/jane",
			want:  `🔗 <a href="https://www.linkedin.com/in/jane" target="_blank" rel="noopener noreferrer">LinkedIn Profile</a>`,
		},
		{
			name:  "emoji github",
			input: "💻 https://github.com/jane",
			want:  `💻 <a href="https://github.com/jane" target="_blank" rel="noopener noreferrer">GitHub Profile</a>`,
		},
		{
			name:  "bare linkedin",
			input: "https://linkedin.com/in/jane",
			want:  `<a href="https://linkedin.com/in/jane" target="_blank" rel="noopener noreferrer">LinkedIn Profile</a>`,
		},
		{
			name:  "bare github on second line",
			input: "Jane\nhttps://github.com/jane",
			want:  `Jane<br><a href="https://github.com/jane" target="_blank" rel="noopener noreferrer">GitHub Profile</a>`,
		},
		{
			name:  "generic url labelled with itself",
			input: "Site: https://jane.dev",
			want:  `Site: <a href="https://jane.dev" target="_blank" rel="noopener noreferrer">https://jane.dev</a>`,
		},
		{
			name:  "markup escaped",
			input: "<script>x</script>",
			want:  "&lt;script&gt;x&lt;/script&gt;",
		},
		{
			name:  "email right after a label colon",
			input: "Email:jane@example.com",
			want:  `Email:<a href="mailto:jane@example.com">jane@example.com</a>`,
		},
		{
			name:  "phone right after a label colon",
			input: "Tel:+1 555-123-4567",
			want:  `Tel:<a href="tel:+15551234567">+1 555-123-4567</a>`,
		},
		{
			name:  "url right after a label colon",
			input: "Web:https://example.com",
			want:  `Web:<a href="https://example.com" target="_blank" rel="noopener noreferrer">https://example.com</a>`,
		},
		{
			name:  "double-quoted url stops at the quote",
			input: `"https://x.com"`,
			want:  `&#34;<a href="https://x.com" target="_blank" rel="noopener noreferrer">https://x.com</a>&#34;`,
		},
		{
			name:  "single-quoted url stops at the quote",
			input: "'https://x.com/a'",
			want:  `&#39;<a href="https://x.com/a" target="_blank" rel="noopener noreferrer">https://x.com/a</a>&#39;`,
		},
		{
			name:  "bracketed github url",
			input: "<https://github.com/jane>",
			want:  `&lt;<a href="https://github.com/jane" target="_blank" rel="noopener noreferrer">GitHub Profile</a>&gt;`,
		},
		{
			name:  "ampersand stays in url",
			input: "https://x.com/?a=1&b=2",
			want:  `<a href="https://x.com/?a=1&amp;b=2" target="_blank" rel="noopener noreferrer">https://x.com/?a=1&amp;b=2</a>`,
		},
		{
			name:  "email inside url query stays in url",
			input: "https://example.com/?u=jane@example.com",
			want:  `<a href="https://example.com/?u=jane@example.com" target="_blank" rel="noopener noreferrer">https://example.com/?u=jane@example.com</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Contact(tt.input)
			if got != tt.want {
				t.Errorf("Contact(%q)\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestContact_EmailAndPhone(t *testing.T) {
	t.Parallel()

	got := Contact("jane@example.com\n+1 555-123-4567")

	if n := strings.Count(got, `href="mailto:`); n != 1 {
		t.Errorf("got %d mailto anchors, want 1: %s", n, got)
	}
	if n := strings.Count(got, `href="tel:`); n != 1 {
		t.Errorf("got %d tel anchors, want 1: %s", n, got)
	}
	if !strings.Contains(got, `>jane@example.com</a>`) {
		t.Errorf("mailto anchor should wrap the literal address: %s", got)
	}
	if !strings.Contains(got, `<a href="tel:+15551234567">+1 555-123-4567</a>`) {
		t.Errorf("tel anchor should wrap the literal number: %s", got)
	}
}

// ---------------------------------------------------------------------------
// TestApply_Idempotent - Re-running never double-wraps
// ---------------------------------------------------------------------------

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"jane@example.com\n+1 555-123-4567",
		"🔗 https://linkedin.com/in/jane\n💻 https://github.com/jane",
		"📞 +33 6 12 34 56 78",
		"https://linkedin.com/in/jane https://github.com/jane https://jane.dev",
		"Email: a@b.co, c@d.io\nWeb: http://example.org/path?q=1&x=2",
		"Nothing to link here",
		"Email:jane@example.com",
		"Tel:+1 555-123-4567",
		`"https://x.com", 'https://y.org/p?q=1&r=2'`,
	}

	for _, input := range inputs {
		once := Contact(input)
		twice := Apply(once)
		if once != twice {
			t.Errorf("Apply not idempotent for %q\n once: %s\ntwice: %s", input, once, twice)
		}
		if n := strings.Count(twice, "<a "); n != strings.Count(twice, "</a>") {
			t.Errorf("unbalanced anchors in %s", twice)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRules_Order - Precedence is part of the contract
// ---------------------------------------------------------------------------

func TestRules_Order(t *testing.T) {
	t.Parallel()

	want := []string{
		"newline",
		"linkedin-emoji",
		"github-emoji",
		"email",
		"phone-emoji",
		"phone",
		"linkedin",
		"github",
		"url",
	}

	if len(Rules) != len(want) {
		t.Fatalf("len(Rules) = %d, want %d", len(Rules), len(want))
	}
	for i, r := range Rules {
		if r.Name != want[i] {
			t.Errorf("Rules[%d] = %q, want %q", i, r.Name, want[i])
		}
	}
}

func TestContact_ProfileURLNotRelabelled(t *testing.T) {
	t.Parallel()

	got := Contact("https://github.com/jane")
	if strings.Contains(got, ">https://github.com/jane</a>") {
		t.Errorf("github URL should be labelled by the github rule, got %s", got)
	}
	if n := strings.Count(got, "<a "); n != 1 {
		t.Errorf("got %d anchors, want 1: %s", n, got)
	}
}

func TestDialable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"+1 555-123-4567", "+15551234567"},
		{"(555) 123 4567", "5551234567"},
		{"+33 (0)6.12.34", "+33061234"},
	}

	for _, tt := range tests {
		if got := dialable(tt.input); got != tt.want {
			t.Errorf("dialable(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
