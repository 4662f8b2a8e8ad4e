package dateutil

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestLayout - Token translation
// ---------------------------------------------------------------------------

func TestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "full year", format: "YYYY", want: "2006"},
		{name: "short year", format: "YY", want: "06"},
		{name: "month name", format: "MMMM", want: "January"},
		{name: "short month name", format: "MMM", want: "Jan"},
		{name: "padded month", format: "MM", want: "01"},
		{name: "month", format: "M", want: "1"},
		{name: "padded day", format: "DD", want: "02"},
		{name: "day", format: "D", want: "2"},
		{name: "iso", format: "YYYY-MM-DD", want: "2006-01-02"},
		{name: "european", format: "DD/MM/YYYY", want: "02/01/2006"},
		{name: "month and year", format: "MMMM YYYY", want: "January 2006"},
		{name: "bracket literal", format: "[Updated] MMM YYYY", want: "Updated Jan 2006"},
		{name: "bracket protects tokens", format: "[MM]", want: "MM"},
		{name: "literal characters kept", format: "DD.MM", want: "02.01"},
		{name: "empty", format: "", wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", format: "[Updated YYYY", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: "YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Layout(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Layout(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Layout(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Auto stamps and passthrough
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "literal passthrough", value: "Spring 2026", want: "Spring 2026"},
		{name: "empty passthrough", value: "", want: ""},
		{name: "bare auto", value: "auto", want: "March 2026"},
		{name: "auto is case-insensitive", value: "AUTO", want: "March 2026"},
		{name: "custom format", value: "auto:DD/MM/YYYY", want: "07/03/2026"},
		{name: "preset iso", value: "auto:iso", want: "2026-03-07"},
		{name: "preset long", value: "auto:long", want: "March 7, 2026"},
		{name: "preset case-insensitive", value: "auto:US", want: "03/07/2026"},
		{name: "preset year", value: "auto:year", want: "2026"},
		{name: "empty format", value: "auto:", wantErr: ErrInvalidDateFormat},
		{name: "bad syntax", value: "automatic", wantErr: ErrInvalidDateFormat},
		{name: "bad format", value: "auto:[YYYY", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.value, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
