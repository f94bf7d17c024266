package ai

import (
	"fmt"
	"strings"
)

// baseSystemPrompt sets the tutor's role for every generation call.
const baseSystemPrompt = `Tu es un tuteur éducatif intelligent pour le système scolaire du Burkina Faso.
Tu adaptes tes explications au niveau de l'élève. Sois clair, encourageant et utilise des exemples concrets
du contexte burkinabè (marché, village, animaux locaux, etc.).`

// SystemPrompt builds the system prompt for a learner's grade and optional extra context.
func SystemPrompt(classe, contexte string) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	if classe != "" {
		fmt.Fprintf(&b, "\nL'élève est en %s.", strings.ToUpper(classe))
	}
	if contexte != "" {
		fmt.Fprintf(&b, "\nContexte: %s", contexte)
	}
	return b.String()
}

// LessonPrompt asks for a structured lesson on a topic.
func LessonPrompt(matiere, titre, resume, classe string) string {
	return fmt.Sprintf(`Explique de manière claire et adaptée le thème suivant pour un élève de %s au Burkina Faso:

Matière: %s
Titre: %s
Résumé: %s

Structure ton explication de la manière suivante:
1. **Introduction**: Présente le sujet simplement.
2. **Explication**: Détaille le concept avec des mots simples.
3. **Exemple concret**: Donne au moins 3 exemples ancrés dans le quotidien du Burkina (marché, village, école, culture locale).
4. **Récapitulatif**: Les 3 points clés à retenir.

Génère une explication détaillée, encourageante et pédagogique.`, strings.ToUpper(classe), matiere, titre, resume)
}

// ExercisePrompt asks for a single multiple-choice exercise as JSON.
func ExercisePrompt(matiere, titre, classe string, difficulte int) string {
	return fmt.Sprintf(`Génère un exercice éducatif adapté pour un élève de %s au Burkina Faso:

Matière: %s
Thème: %s
Difficulté: %d/3

Format de réponse (JSON):
{
    "question": "Question claire",
    "type": "choix_multiple",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correct_index": 0,
    "feedback_success": "Bravo ! Explique ici pourquoi c'est la bonne réponse.",
    "feedback_fail": "Essaie encore ! Donne une petite piste pour aider."
}

Utilise des noms et contextes burkinabè (Ali, Fatou, le marché de Rood Woko, le village, etc.).`,
		strings.ToUpper(classe), matiere, titre, difficulte)
}

// ExerciseBatchPrompt asks for count exercises of mixed difficulty as a JSON list.
func ExerciseBatchPrompt(matiere, titre, resume, classe string, count int) string {
	return fmt.Sprintf(`Génère un lot de %d exercices éducatifs différents pour un élève de %s au Burkina Faso:

Matière: %s
Thème: %s
Résumé du cours: %s

Chaque exercice doit avoir une difficulté variée (mélange de 1, 2 et 3).

Format de réponse (JSON uniquement, une liste d'objets) :
[
    {
        "question": "Question claire",
        "type": "choix_multiple",
        "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
        "correct_index": 0,
        "feedback_success": "Bravo !...",
        "feedback_fail": "Essaie encore !...",
        "difficulte": 1
    }
]

Utilise des noms et contextes burkinabè.`, count, strings.ToUpper(classe), matiere, titre, resume)
}

// TopicRef identifies a topic offered to the model as a tagging choice.
type TopicRef struct {
	ID    int64
	Titre string
}

// EssentialQuestionsPrompt asks for the must-know questions of a subject,
// each tagged with one of the given topics.
func EssentialQuestionsPrompt(matiere, classe string, topics []TopicRef, count int) string {
	lines := make([]string, len(topics))
	for i, t := range topics {
		lines[i] = fmt.Sprintf("- %d: %s", t.ID, t.Titre)
	}
	return fmt.Sprintf(`Tu es un expert pédagogique du programme scolaire au Burkina Faso.
Ta mission est de générer les %d questions les plus ESSENTIELLES pour un élève de %s en %s.
Ces questions doivent couvrir les points fondamentaux que l'élève DOIT absolument maîtriser à la fin de l'année.

Pour chaque question, choisis le chapitre le plus pertinent parmi la liste suivante :
%s

Si aucun chapitre ne correspond vraiment, utilise l'ID du chapitre le plus proche ou le premier de la liste.

Format de réponse (JSON uniquement, une liste d'objets) :
[
    {
        "question": "La question essentielle...",
        "type": "choix_multiple",
        "options": ["Réponse A", "Réponse B", "Réponse C", "Réponse D"],
        "correct_index": 0,
        "feedback_success": "Excellent ! C'est une notion de base.",
        "feedback_fail": "Attention, c'est un point essentiel à revoir.",
        "difficulte": 2,
        "topic_id": 123
    }
]`, count, strings.ToUpper(classe), strings.ToUpper(matiere), strings.Join(lines, "\n"))
}

// TopicListPrompt asks for count curriculum topics of a subject as a JSON list.
func TopicListPrompt(matiere, classe string, count int) string {
	return fmt.Sprintf(`Génère une liste de %d thèmes (topics) pour la matière "%s" pour une classe de %s au Burkina Faso.
Respecte le programme officiel burkinabè 2024-2026.

Retourne UNIQUEMENT une liste JSON, sans texte avant ou après :
[
    {
        "titre": "Titre du thème",
        "resume": "Résumé court (2-3 phrases) de ce que l'élève va apprendre",
        "ordre": 1
    }
]`, count, matiere, strings.ToUpper(classe))
}

// ChatTurn is one message of a tutor conversation as sent by the client.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatLearner describes the learner talking to the tutor.
type ChatLearner struct {
	Username  string
	Classe    string
	Points    int
	Secondary bool
}

// maxChatHistory is the number of past messages replayed to the tutor.
const maxChatHistory = 5

// TutorContext builds the Sandy persona and recent history passed as
// context to the tutor chat.
func TutorContext(learner ChatLearner, history []ChatTurn) string {
	name := learner.Username
	if name == "" {
		name = "Élève"
	}
	secondaryRange := ""
	if learner.Secondary {
		secondaryRange = "6ème-Terminale"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Tu es Sandy, le Tuteur Intelligent de 'FASO Tuteur'.
Tu es un renard malin, savant et très amical 🦊.
Ton rôle est d'aider les élèves du Burkina Faso.
L'élève actuel s'appelle %s, il est en %s et a cumulé %d points de savoir.

REFORMES ET CONTEXTE ACTUEL (2024-2026) :
- IPEQ : Initiative Présidentielle pour une Éducation de Qualité.
- Anglais introduit dès le CP1.
- Port du Faso Dan Fani obligatoire le lundi et jeudi.
- Focus sur l'éducation civique et patriotique.
- Langues nationales valorisées.

TON STYLE :
- Pour le primaire : Sois très pédagogue, utilise un langage simple, beaucoup d'encouragements et des emojis.
- Pour le secondaire (%s) : Reste amical mais adopte un ton plus mature, précis et structuré. Aide-les à préparer le BEPC ou le Baccalauréat si nécessaire.
- Utilise toujours des exemples du quotidien burkinabè (le mil, le Faso Dan Fani, Ouagadougou, Bobo-Dioulasso, les mines d'or, etc.).
- Si le sujet est hors cadre scolaire, ramène gentiment l'élève vers ses études.
- Tu peux utiliser quelques emojis pour rendre la discussion vivante.`,
		name, strings.ToUpper(learner.Classe), learner.Points, secondaryRange)

	if len(history) > 0 {
		if len(history) > maxChatHistory {
			history = history[len(history)-maxChatHistory:]
		}
		b.WriteString("\n\nHistorique récent de la conversation :\n")
		for _, turn := range history {
			speaker := "Sandy"
			if turn.Role == "user" {
				speaker = "Élève"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Content)
		}
	}
	return b.String()
}
