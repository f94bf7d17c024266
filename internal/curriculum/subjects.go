package curriculum

var subjectLabels = map[string]string{
	"francais":              "Français",
	"lecture":               "Lecture",
	"litterature":           "Littérature",
	"ecriture":              "Écriture",
	"grammaire":             "Grammaire",
	"conjugaison":           "Conjugaison",
	"orthographe":           "Orthographe",
	"vocabulaire":           "Vocabulaire",
	"expression_orale":      "Expression Orale",
	"expression_ecrite":     "Expression Écrite",
	"mathematiques":         "Mathématiques",
	"arithmetique":          "Arithmétique",
	"geometrie":             "Géométrie",
	"systeme_metrique":      "Système Métrique",
	"sciences":              "Sciences",
	"exercices_sensoriels":  "Exercices Sensoriels",
	"exercices_observation": "Exercices d'Observation",
	"histoire":              "Histoire",
	"geographie":            "Géographie",
	"ecm":                   "Éducation Civique et Morale",
	"aec":                   "Activités d'Expression et de Création (AEC)",
	"arts":                  "Arts et Culture",
	"anglais":               "Anglais",
	"svt":                   "SVT",
	"physique_chimie":       "Physique-Chimie",
	"philosophie":           "Philosophie",
	"tic":                   "Informatique (TIC)",
}

// SubjectLabel returns the display name of a subject code.
func SubjectLabel(code string) string {
	if label, ok := subjectLabels[code]; ok {
		return label
	}
	return code
}

// IsValidSubject reports whether code is a known subject.
func IsValidSubject(code string) bool {
	_, ok := subjectLabels[code]
	return ok
}

// programme is the official list of subjects taught per grade.
// Physical education is not part of the platform.
var programme = map[string][]string{
	"cp1": {"lecture", "ecriture", "exercices_sensoriels", "expression_orale", "arithmetique", "exercices_observation", "aec"},
	"cp2": {"lecture", "ecriture", "expression_orale", "arithmetique", "exercices_observation", "aec"},
	"ce1": {"lecture", "ecriture", "grammaire", "conjugaison", "orthographe", "vocabulaire", "expression_orale",
		"arithmetique", "systeme_metrique", "geometrie", "exercices_observation", "geographie", "histoire", "ecm", "aec"},
	"ce2": {"lecture", "grammaire", "conjugaison", "orthographe", "vocabulaire", "expression_orale", "expression_ecrite",
		"arithmetique", "systeme_metrique", "geometrie", "sciences", "geographie", "histoire", "ecm", "aec"},
	"cm1": {"lecture", "grammaire", "conjugaison", "orthographe", "vocabulaire", "expression_orale", "expression_ecrite",
		"arithmetique", "geometrie", "systeme_metrique", "sciences", "geographie", "histoire", "ecm", "aec", "tic"},
	"cm2": {"lecture", "grammaire", "conjugaison", "orthographe", "vocabulaire", "expression_orale", "expression_ecrite",
		"arithmetique", "geometrie", "systeme_metrique", "sciences", "geographie", "histoire", "ecm", "aec", "tic"},

	"6eme": collegeSubjects,
	"5eme": collegeSubjects,
	"4eme": collegeSubjects,
	"3eme": collegeSubjects,

	"2nde":   {"francais", "mathematiques", "anglais", "histoire", "geographie", "svt", "physique_chimie", "ecm", "tic"},
	"1ere_a": {"francais", "philosophie", "histoire", "geographie", "anglais", "mathematiques", "sciences"},
	"1ere_c": {"mathematiques", "physique_chimie", "svt", "francais", "anglais", "histoire", "geographie", "philosophie"},
	"1ere_d": {"mathematiques", "svt", "physique_chimie", "francais", "anglais", "histoire", "geographie", "philosophie"},
	"t_a":    {"philosophie", "francais", "histoire", "geographie", "anglais", "mathematiques", "sciences"},
	"t_c":    {"mathematiques", "physique_chimie", "svt", "francais", "philosophie", "anglais", "histoire", "geographie"},
	"t_d":    {"svt", "mathematiques", "physique_chimie", "francais", "philosophie", "anglais", "histoire", "geographie"},
}

var collegeSubjects = []string{
	"francais", "mathematiques", "anglais", "histoire", "geographie", "svt", "physique_chimie", "ecm", "arts", "tic",
}

// SubjectsForGrade returns the subject codes of the official programme for a
// grade, or nil when the grade has no programme entry.
func SubjectsForGrade(grade string) []string {
	subjects := programme[NormalizeGrade(grade)]
	if subjects == nil {
		return nil
	}
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

// IsSubjectAllowed reports whether a subject is taught in a grade.
func IsSubjectAllowed(grade, subject string) bool {
	for _, s := range programme[NormalizeGrade(grade)] {
		if s == subject {
			return true
		}
	}
	return false
}
