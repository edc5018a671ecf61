package server

import "testing"

func TestValidateName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Ada", "Ada", false},
		{"  Ada  ", "Ada", false},
		{"", "", true},
		{"   ", "", true},
		{"this name is far too long to accept", "", true},
		{"bad\x00name", "", true},
	}
	for _, tc := range cases {
		got, err := validateName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("validateName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("validateName(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("validateName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeLngWraps(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		190:  -170,
		-190: 170,
		540:  180,
		-540: -180,
	}
	for in, want := range cases {
		if got := sanitizeLng(in); got != want {
			t.Fatalf("sanitizeLng(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseRoomPath(t *testing.T) {
	cases := []struct {
		path   string
		id     string
		action string
		ok     bool
	}{
		{"/api/rooms/room-1", "room-1", "", true},
		{"/api/rooms/room-1/", "room-1", "", true},
		{"/api/rooms/room-1/join", "room-1", "join", true},
		{"/api/rooms/room-1/join/extra", "", "", false},
		{"/api/rooms/", "", "", false},
		{"/other", "", "", false},
	}
	for _, tc := range cases {
		id, action, ok := parseRoomPath(tc.path)
		if id != tc.id || action != tc.action || ok != tc.ok {
			t.Fatalf("parseRoomPath(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.path, id, action, ok, tc.id, tc.action, tc.ok)
		}
	}
}

func TestNewRoomCodeShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code := newRoomCode()
		if len(code) != 6 {
			t.Fatalf("expected 6-character code, got %q", code)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("expected varied codes across generations")
	}
}
