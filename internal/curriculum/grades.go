// Package curriculum holds the Burkina Faso school reference data: grade
// codes, subject labels and the official programme of subjects per grade.
package curriculum

import "strings"

// Grade is a school-year cohort code with its display label.
type Grade struct {
	Code  string
	Label string
}

// Grades lists every grade from CP1 to Terminale, in school order.
var Grades = []Grade{
	{"cp1", "CP1"},
	{"cp2", "CP2"},
	{"ce1", "CE1"},
	{"ce2", "CE2"},
	{"cm1", "CM1"},
	{"cm2", "CM2"},
	{"6eme", "6ème"},
	{"5eme", "5ème"},
	{"4eme", "4ème"},
	{"3eme", "3ème"},
	{"2nde", "2nde"},
	{"1ere_a", "1ère A"},
	{"1ere_c", "1ère C"},
	{"1ere_d", "1ère D"},
	{"t_a", "Terminale A"},
	{"t_c", "Terminale C"},
	{"t_d", "Terminale D"},
}

var primaryGrades = map[string]bool{
	"cp1": true, "cp2": true, "ce1": true, "ce2": true, "cm1": true, "cm2": true,
}

// NormalizeGrade lowercases and trims a grade code.
func NormalizeGrade(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsValidGrade reports whether code is a known grade.
func IsValidGrade(code string) bool {
	code = NormalizeGrade(code)
	for _, g := range Grades {
		if g.Code == code {
			return true
		}
	}
	return false
}

// GradeLabel returns the display label of a grade, or the upper-cased code
// for unknown grades.
func GradeLabel(code string) string {
	code = NormalizeGrade(code)
	for _, g := range Grades {
		if g.Code == code {
			return g.Label
		}
	}
	return strings.ToUpper(code)
}

// IsPrimary reports whether the grade belongs to primary school (CP1 to CM2).
func IsPrimary(code string) bool {
	return primaryGrades[NormalizeGrade(code)]
}

// DefaultNoAIGrades are the grades served with pre-authored content only.
var DefaultNoAIGrades = []string{"cp1", "cp2"}

// AIPolicy decides which grades receive generated content and the tutor chat.
type AIPolicy struct {
	noAI map[string]bool
}

// NewAIPolicy builds a policy; an empty list falls back to DefaultNoAIGrades.
func NewAIPolicy(noAIGrades []string) AIPolicy {
	if len(noAIGrades) == 0 {
		noAIGrades = DefaultNoAIGrades
	}
	p := AIPolicy{noAI: make(map[string]bool, len(noAIGrades))}
	for _, g := range noAIGrades {
		p.noAI[NormalizeGrade(g)] = true
	}
	return p
}

// UsesAI reports whether the grade uses generative content.
func (p AIPolicy) UsesAI(grade string) bool {
	if p.noAI == nil {
		return NewAIPolicy(nil).UsesAI(grade)
	}
	return !p.noAI[NormalizeGrade(grade)]
}
