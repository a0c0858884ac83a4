package phase

import "testing"

func TestLater(t *testing.T) {
	tests := []struct {
		p, other Phase
		want     bool
	}{
		{Planning, Analysis, true},
		{Implementation, Solutioning, true},
		{Analysis, Planning, false},
		{Planning, Planning, false},
	}
	for _, tt := range tests {
		if got := tt.p.Later(tt.other); got != tt.want {
			t.Errorf("%s.Later(%s) = %v, want %v", tt.p, tt.other, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(" Solutioning ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != Solutioning {
		t.Errorf("Parse() = %q, want %q", got, Solutioning)
	}

	if _, err := Parse("deployment"); err == nil {
		t.Error("Parse(deployment) should fail")
	}
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	all[0] = "mutated"
	if All()[0] != Analysis {
		t.Error("All() exposes internal order slice")
	}
	if Implementation.Index() != 3 {
		t.Errorf("Implementation.Index() = %d, want 3", Implementation.Index())
	}
	if Planning.Title() != "Planning" {
		t.Errorf("Title() = %q", Planning.Title())
	}
}
