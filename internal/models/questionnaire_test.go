package models

import (
	"fmt"
	"testing"
)

func TestLoadQuestionnaire(t *testing.T) {
	q, err := LoadQuestionnaire("../../config/questions.yaml")
	if err != nil {
		t.Fatalf("LoadQuestionnaire: %v", err)
	}
	if len(q.Questions) != 57 {
		t.Fatalf("loaded %d questions, want 57", len(q.Questions))
	}

	// Ids must be exactly q1..q57 in order; the scoring groups depend on it.
	keys := q.KeySet()
	for i := 1; i <= 57; i++ {
		id := fmt.Sprintf("q%d", i)
		if _, ok := keys[id]; !ok {
			t.Errorf("missing question id %s", id)
		}
		if q.Questions[i-1].ID != id {
			t.Errorf("question %d has id %s, want %s", i, q.Questions[i-1].ID, id)
		}
	}

	for _, question := range q.Questions {
		if question.Text == "" || question.Category == "" {
			t.Errorf("question %s has empty text or category", question.ID)
		}
	}
}

func TestLoadQuestionnaireMissingFile(t *testing.T) {
	if _, err := LoadQuestionnaire("does-not-exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
