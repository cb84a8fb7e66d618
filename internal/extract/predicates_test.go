package extract

import "testing"

func TestLooksLikeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Bengaluru, Karnataka, India", true},
		{"Greater Boston Area", true},
		{"San Francisco Bay Area", true},
		{"Warsaw", true},
		{"", false},
		{"X", false},
		{"42", false},
		{"Senior Software Engineer", false},
		{"one two three four five six seven eight nine ten eleven twelve thirteen", false},
	}
	for _, tt := range tests {
		if got := LooksLikeLocation(tt.in); got != tt.want {
			t.Errorf("LooksLikeLocation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeJobTitle(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Senior Software Engineer", true},
		{"VP of Sales", true},
		{"Founder", true},
		{"Acme Holdings", false},
		{"Lisbon, Portugal", false},
		{"", false},
		{"vproduction", false}, // word boundary: "vp" must not match inside
	}
	for _, tt := range tests {
		if got := LooksLikeJobTitle(tt.in); got != tt.want {
			t.Errorf("LooksLikeJobTitle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeDateRange(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Jan 2020 - Present", true},
		{"March 2019 – June 2021", true},
		{"2019 - 2023", true},
		{"3 yrs 2 mos", true},
		{"Present", true},
		{"Acme Corp", false},
		{"Paris, France", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeDateRange(tt.in); got != tt.want {
			t.Errorf("LooksLikeDateRange(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStripEmploymentQualifiers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme · Full-time", "Acme"},
		{"Full-time · Acme", "Acme"},
		{"Contract - Globex", "Globex"},
		{"Initech", "Initech"},
		{"Internship · Acme · Full-time", "Acme"},
	}
	for _, tt := range tests {
		if got := StripEmploymentQualifiers(tt.in); got != tt.want {
			t.Errorf("StripEmploymentQualifiers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
