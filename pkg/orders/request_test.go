package orders

import "testing"

func TestUnwrapNoteWrappedProperties(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"note": "Patient needs a CPAP"}`, "Patient needs a CPAP"},
		{`{"content": "Patient needs a walker"}`, "Patient needs a walker"},
		{`{"text": "Oxygen 2 L/min"}`, "Oxygen 2 L/min"},
		{`{"physician_note": "Nebulizer with albuterol"}`, "Nebulizer with albuterol"},
	}
	for _, tc := range cases {
		if got := UnwrapNote([]byte(tc.body)); got != tc.want {
			t.Fatalf("UnwrapNote(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestUnwrapNotePrefersFirstProperty(t *testing.T) {
	body := `{"content": "from content", "note": "from note"}`
	if got := UnwrapNote([]byte(body)); got != "from note" {
		t.Fatalf("expected note property to win, got %q", got)
	}
}

func TestUnwrapNoteRawText(t *testing.T) {
	if got := UnwrapNote([]byte("  Patient needs a CPAP  ")); got != "Patient needs a CPAP" {
		t.Fatalf("expected trimmed raw text, got %q", got)
	}
}

func TestUnwrapNoteUnrecognizedJSON(t *testing.T) {
	body := `{"foo": "bar"}`
	if got := UnwrapNote([]byte(body)); got != body {
		t.Fatalf("expected body passthrough, got %q", got)
	}
}
