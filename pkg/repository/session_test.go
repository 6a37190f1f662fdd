package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

func testSession(userID types.UserID) (*model.Session, []*model.SessionPaper) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &model.Session{
		ID:             types.NewSessionID(),
		UserID:         userID,
		Title:          "Attention Is All You Need",
		SeedID:         "1706.03762",
		Mode:           types.ModeGrounding,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	papers := []*model.SessionPaper{
		{SessionID: session.ID, PaperID: "1706.03762", Position: 0, IsSeed: true, AddedAt: now},
		{SessionID: session.ID, PaperID: "1810.04805", Position: 1, AddedAt: now},
		{SessionID: session.ID, PaperID: "2005.14165", Position: 2, AddedAt: now},
	}

	return session, papers
}

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create then GetAndTouch", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, papers := testSession("user-1")
		if err := repo.Session().Create(ctx, session, papers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := repo.Session().GetAndTouch(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Title != session.Title {
			t.Errorf("expected Title=%s, got %s", session.Title, got.Title)
		}
		if got.SeedID != session.SeedID {
			t.Errorf("expected SeedID=%s, got %s", session.SeedID, got.SeedID)
		}
		if !got.LastAccessedAt.After(session.LastAccessedAt) {
			t.Errorf("expected LastAccessedAt to advance: created=%v got=%v", session.LastAccessedAt, got.LastAccessedAt)
		}
	})

	t.Run("GetAndTouch enforces ownership", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, papers := testSession("user-1")
		if err := repo.Session().Create(ctx, session, papers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		_, err := repo.Session().GetAndTouch(ctx, session.ID, "user-2")
		if err == nil {
			t.Fatal("expected error for other user's session, got nil")
		}
		if !errors.Is(err, types.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got: %v", err)
		}
	})

	t.Run("GetAndTouch not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Session().GetAndTouch(ctx, types.NewSessionID(), "user-1")
		if err == nil {
			t.Fatal("expected error for missing session, got nil")
		}
		if !errors.Is(err, types.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got: %v", err)
		}
	})

	t.Run("ListByUser ordered by last access", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, firstPapers := testSession("user-3")
		if err := repo.Session().Create(ctx, first, firstPapers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		second, secondPapers := testSession("user-3")
		second.LastAccessedAt = second.LastAccessedAt.Add(time.Minute)
		if err := repo.Session().Create(ctx, second, secondPapers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		other, otherPapers := testSession("user-4")
		if err := repo.Session().Create(ctx, other, otherPapers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		sessions, err := repo.Session().ListByUser(ctx, "user-3")
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sessions))
		}
		if sessions[0].ID != second.ID {
			t.Errorf("expected most recently accessed session first, got %s", sessions[0].ID)
		}
	})

	t.Run("ListPapers in position order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, papers := testSession("user-1")
		if err := repo.Session().Create(ctx, session, papers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := repo.Session().ListPapers(ctx, session.ID)
		if err != nil {
			t.Fatalf("failed to list session papers: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 papers, got %d", len(got))
		}
		for i, p := range got {
			if p.Position != i {
				t.Errorf("expected position %d at index %d, got %d", i, i, p.Position)
			}
		}
		if !got[0].IsSeed {
			t.Error("expected first paper to be the seed")
		}
	})

	t.Run("UpdateTitle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, papers := testSession("user-1")
		if err := repo.Session().Create(ctx, session, papers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Session().UpdateTitle(ctx, session.ID, "user-1", "Renamed"); err != nil {
			t.Fatalf("failed to update title: %v", err)
		}

		got, err := repo.Session().GetAndTouch(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Title != "Renamed" {
			t.Errorf("expected Title=Renamed, got %s", got.Title)
		}

		if err := repo.Session().UpdateTitle(ctx, session.ID, "user-2", "Hijacked"); !errors.Is(err, types.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound for other user, got: %v", err)
		}
	})

	t.Run("Delete removes session and papers", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session, papers := testSession("user-1")
		if err := repo.Session().Create(ctx, session, papers); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Session().Delete(ctx, session.ID, "user-2"); !errors.Is(err, types.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound for other user, got: %v", err)
		}

		if err := repo.Session().Delete(ctx, session.ID, "user-1"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}

		if _, err := repo.Session().GetAndTouch(ctx, session.ID, "user-1"); !errors.Is(err, types.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got: %v", err)
		}
	})
}

func TestMemorySessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreSessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, newFirestoreRepository)
}
