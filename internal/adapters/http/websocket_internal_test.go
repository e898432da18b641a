package http

import "testing"

func TestWSSubject(t *testing.T) {
	cases := map[string]string{
		"":          "rent.observation.>",
		"apartment": "rent.observation.apartment",
		"wg":        "rent.observation.sharedRoom",
	}
	for in, want := range cases {
		got, err := wsSubject(in)
		if err != nil || got != want {
			t.Errorf("wsSubject(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := wsSubject("castle"); err == nil {
		t.Error("expected error for unknown category")
	}
}
