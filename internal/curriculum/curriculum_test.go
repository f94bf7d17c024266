package curriculum

import "testing"

func TestGrades(t *testing.T) {
	if len(Grades) != 17 {
		t.Fatalf("len(Grades) = %d, want 17", len(Grades))
	}
	for _, g := range Grades {
		if SubjectsForGrade(g.Code) == nil {
			t.Errorf("grade %s has no programme entry", g.Code)
		}
		for _, s := range SubjectsForGrade(g.Code) {
			if !IsValidSubject(s) {
				t.Errorf("grade %s lists unknown subject %s", g.Code, s)
			}
		}
	}
}

func TestIsValidGrade(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"cp1", true},
		{" CE1 ", true},
		{"t_d", true},
		{"cp3", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidGrade(tt.code); got != tt.want {
			t.Errorf("IsValidGrade(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestGradeLabel(t *testing.T) {
	if got := GradeLabel("1ere_c"); got != "1ère C" {
		t.Errorf("GradeLabel(1ere_c) = %q", got)
	}
	if got := GradeLabel("xyz"); got != "XYZ" {
		t.Errorf("GradeLabel(xyz) = %q", got)
	}
}

func TestAIPolicy(t *testing.T) {
	policy := NewAIPolicy(nil)

	tests := []struct {
		grade string
		want  bool
	}{
		{"cp1", false},
		{"CP2", false},
		{"ce1", true},
		{"t_c", true},
	}
	for _, tt := range tests {
		if got := policy.UsesAI(tt.grade); got != tt.want {
			t.Errorf("UsesAI(%q) = %v, want %v", tt.grade, got, tt.want)
		}
	}

	var zero AIPolicy
	if zero.UsesAI("cp1") {
		t.Error("zero AIPolicy should fall back to the default no-AI grades")
	}

	custom := NewAIPolicy([]string{"cp1", "cp2", "ce1"})
	if custom.UsesAI("ce1") {
		t.Error("custom policy should exclude ce1")
	}
}

func TestIsSubjectAllowed(t *testing.T) {
	tests := []struct {
		grade, subject string
		want           bool
	}{
		{"cp1", "lecture", true},
		{"cp1", "histoire", false},
		{"ce1", "histoire", true},
		{"6eme", "arts", true},
		{"2nde", "arts", false},
		{"unknown", "lecture", false},
	}
	for _, tt := range tests {
		if got := IsSubjectAllowed(tt.grade, tt.subject); got != tt.want {
			t.Errorf("IsSubjectAllowed(%q, %q) = %v, want %v", tt.grade, tt.subject, got, tt.want)
		}
	}
}

func TestSubjectsForGradeReturnsCopy(t *testing.T) {
	first := SubjectsForGrade("6eme")
	first[0] = "changed"
	if SubjectsForGrade("5eme")[0] != "francais" {
		t.Error("SubjectsForGrade must not expose shared slices")
	}
}

func TestIsPrimary(t *testing.T) {
	if !IsPrimary("cm2") || IsPrimary("6eme") {
		t.Error("IsPrimary misclassifies grades")
	}
}
