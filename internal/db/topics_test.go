package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"campusboard/internal/models"
)

func TestTopicLockCycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	mod := createAccount(t, db, "mod", models.RoleMod)

	topic := &models.Topic{Title: "Cafeteria menu", Body: "Ideas?", AuthorID: mod.ID}
	if err := db.CreateTopic(ctx, topic); err != nil {
		t.Fatalf("CreateTopic() error = %v", err)
	}
	if topic.Status != models.TopicOpen {
		t.Errorf("CreateTopic() status = %q, want OPEN", topic.Status)
	}

	locked, err := db.SetTopicStatus(ctx, topic.ID, models.TopicOpen, models.TopicLocked)
	if err != nil {
		t.Fatalf("SetTopicStatus() error = %v", err)
	}
	if locked.Status != models.TopicLocked {
		t.Errorf("status = %q, want LOCKED", locked.Status)
	}

	if _, err := db.SetTopicStatus(ctx, topic.ID, models.TopicOpen, models.TopicLocked); !errors.Is(err, ErrTopicStateChanged) {
		t.Errorf("second lock error = %v, want ErrTopicStateChanged", err)
	}
	if _, err := db.GetTopic(ctx, uuid.New()); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("GetTopic() unknown error = %v, want ErrTopicNotFound", err)
	}
}

func TestEventsListedByStart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	mod := createAccount(t, db, "mod", models.RoleMod)

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	for i, title := range []string{"Third", "First", "Second"} {
		offsets := []int{48, 0, 24}
		event := &models.Event{Title: title, StartsAt: base.Add(time.Duration(offsets[i]) * time.Hour), CreatedBy: mod.ID}
		if err := db.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent(%q) error = %v", title, err)
		}
	}

	events, total, err := db.ListEvents(ctx, models.EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("ListEvents() total = %d, want 3", total)
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if events[i].Title != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Title, want)
		}
	}

	from := base.Add(12 * time.Hour)
	to := base.Add(30 * time.Hour)
	events, _, err = db.ListEvents(ctx, models.EventFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListEvents(range) error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Second" {
		t.Errorf("ListEvents(range) = %+v, want only Second", events)
	}

	if err := db.DeleteEvent(ctx, uuid.New()); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("DeleteEvent() unknown error = %v, want ErrEventNotFound", err)
	}
}
