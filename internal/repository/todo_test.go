package repository

import (
	"testing"
)

func TestTodoLifecycle(t *testing.T) {
	repo := NewTodoRepository()

	if got := repo.ListByUser("user-1"); len(got) != 0 {
		t.Fatalf("Expected empty list, got %d items", len(got))
	}

	first := repo.Add("Read chapter 3", "user-1")
	second := repo.Add("Finish quiz", "user-1")

	if first.ID == second.ID {
		t.Error("Expected distinct todo IDs")
	}
	if first.Done {
		t.Error("Expected new todo to start not done")
	}

	list := repo.ListByUser("user-1")
	if len(list) != 2 {
		t.Fatalf("Expected 2 todos, got %d", len(list))
	}

	updated, ok := repo.SetDone(first.ID, "user-1", true)
	if !ok {
		t.Fatal("Expected SetDone to find the todo")
	}
	if !updated.Done {
		t.Error("Expected todo to be marked done")
	}

	if !repo.Remove(second.ID, "user-1") {
		t.Error("Expected Remove to succeed")
	}
	if got := repo.ListByUser("user-1"); len(got) != 1 {
		t.Errorf("Expected 1 todo after removal, got %d", len(got))
	}
}

func TestTodosAreScopedPerUser(t *testing.T) {
	repo := NewTodoRepository()

	mine := repo.Add("My task", "user-1")
	repo.Add("Their task", "user-2")

	if got := repo.ListByUser("user-1"); len(got) != 1 {
		t.Errorf("Expected 1 todo for user-1, got %d", len(got))
	}

	// Another user cannot touch someone else's item
	if _, ok := repo.SetDone(mine.ID, "user-2", true); ok {
		t.Error("Expected cross-user SetDone to fail")
	}
	if repo.Remove(mine.ID, "user-2") {
		t.Error("Expected cross-user Remove to fail")
	}

	if got := repo.ListByUser("user-1"); len(got) != 1 || got[0].Done {
		t.Errorf("Expected user-1 todo untouched, got %+v", got)
	}
}

func TestTodoUnknownID(t *testing.T) {
	repo := NewTodoRepository()
	repo.Add("Task", "user-1")

	if _, ok := repo.SetDone("missing", "user-1", true); ok {
		t.Error("Expected SetDone on unknown ID to fail")
	}
	if repo.Remove("missing", "user-1") {
		t.Error("Expected Remove on unknown ID to fail")
	}
}
