package sanitizer

import "testing"

func TestSanitizePurpose(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "Physics study group", "Physics study group"},
		{"surrounding space", "  seminar  ", "seminar"},
		{"whitespace runs", "thesis\t\tdefense   rehearsal", "thesis defense rehearsal"},
		{"newlines", "club\nmeeting", "club meeting"},
		{"control characters", "exam\x00 review\x07", "exam review"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"unicode preserved", "réunion du département", "réunion du département"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizePurpose(tc.in); got != tc.want {
				t.Errorf("SanitizePurpose(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
