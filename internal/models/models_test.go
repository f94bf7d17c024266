package models

import (
	"reflect"
	"testing"
	"time"
)

func TestUserIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"registered never expires", User{IsGuest: false, ExpiresAt: &past}, false},
		{"guest without expiry", User{IsGuest: true}, false},
		{"guest in lifetime", User{IsGuest: true, ExpiresAt: &future}, false},
		{"guest expired", User{IsGuest: true, ExpiresAt: &past}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressionTauxReussite(t *testing.T) {
	tests := []struct {
		name     string
		reussis  int
		total    int
		expected float64
	}{
		{"no attempts", 0, 0, 0},
		{"all correct", 4, 4, 100},
		{"one of four", 1, 4, 25},
		{"two of three", 2, 3, 200.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Progression{ExercicesReussis: tt.reussis, ExercicesTotal: tt.total}
			if got := p.TauxReussite(); got != tt.expected {
				t.Errorf("TauxReussite() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExerciseOptions(t *testing.T) {
	text := Exercise{OptionsText: []string{"4", "5"}, OptionsImages: []string{"a.png"}}
	if got := text.Options(); !reflect.DeepEqual(got, []string{"4", "5"}) {
		t.Errorf("Options() = %v, want text options", got)
	}

	images := Exercise{OptionsImages: []string{"a.png", "b.png"}}
	if got := images.Options(); !reflect.DeepEqual(got, []string{"a.png", "b.png"}) {
		t.Errorf("Options() = %v, want image options", got)
	}

	if got := (&Exercise{}).Options(); len(got) != 0 {
		t.Errorf("Options() = %v, want empty", got)
	}
}

func TestTopicHasLesson(t *testing.T) {
	empty := ""
	lesson := "Les nombres de 0 à 10"

	if (&Topic{}).HasLesson() {
		t.Error("HasLesson() = true for nil content")
	}
	if (&Topic{ContenuCours: &empty}).HasLesson() {
		t.Error("HasLesson() = true for empty content")
	}
	if !(&Topic{ContenuCours: &lesson}).HasLesson() {
		t.Error("HasLesson() = false for stored content")
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (&User{Username: "awa", FirstName: "Awa"}).DisplayName(); got != "Awa" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (&User{Username: "anonyme_1234abcd"}).DisplayName(); got != "anonyme_1234abcd" {
		t.Errorf("DisplayName() = %q", got)
	}
}
