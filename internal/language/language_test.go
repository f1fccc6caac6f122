package language

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"JavaScript", JavaScript},
		{"  JavaScript   1.7 ", JavaScript17},
		{"CoffeeScript", CoffeeScript},
		{"Brainfuck", Language("brainfuck")},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := JavaScript17.DisplayName(); got != "JavaScript 1.7" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := Language("elm").DisplayName(); got != "elm" {
		t.Errorf("DisplayName() for unknown = %q", got)
	}
	if Language("elm").Known() {
		t.Error("Known() = true for unknown language")
	}
}

func TestSet(t *testing.T) {
	s := ParseSet([]string{"javascript", "JavaScript 1.7"})
	if !s.Contains(JavaScript17) {
		t.Error("Contains(javascript 1.7) = false")
	}
	if s.Contains(CoffeeScript) {
		t.Error("Contains(coffeescript) = true")
	}
	if !s.Any(HTML, JavaScript) || s.Any(HTML, CSS) {
		t.Error("Any() returned wrong result")
	}
}

func TestAllSorted(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("All() returned %d languages", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Errorf("All() not sorted: %v", all)
		}
	}
}
