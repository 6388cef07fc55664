package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"gocatalog_api/internal/catalog/internal/models"
)

func TestUnlinkedRoots(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT categoryid, COALESCE\(name, ''\), COALESCE\(path, ''\)`).
		WillReturnRows(sqlmock.NewRows([]string{"categoryid", "name", "path"}).
			AddRow("GEN_A_B", "B", "A/B"))

	roots, err := repo.UnlinkedRoots(context.Background())
	if err != nil {
		t.Fatalf("UnlinkedRoots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != "GEN_A_B" || roots[0].Path != "A/B" {
		t.Fatalf("unexpected roots: %v", roots)
	}
	expectMet(t, mock)
}

func TestUnlinkedRoots_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(`SELECT categoryid, COALESCE\(name, ''\), COALESCE\(path, ''\)`).
		WillReturnRows(sqlmock.NewRows([]string{"categoryid", "name", "path"}))

	roots, err := repo.UnlinkedRoots(context.Background())
	if err != nil {
		t.Fatalf("UnlinkedRoots: %v", err)
	}
	if len(roots) != 0 {
		t.Fatalf("expected no roots, got %v", roots)
	}
	expectMet(t, mock)
}

func TestBackfillParents_SkipsRootsAndUpdatesRest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare(`UPDATE catalog\.categories SET parent_id`)
	prepared.ExpectExec().
		WithArgs("GEN_TOOLS", "GEN_TOOLS_DRILLS").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batch := []models.Category{
		{ID: "GEN_TOOLS", Path: "Tools"}, // root, no parent to set
		{ID: "GEN_TOOLS_DRILLS", Path: "Tools/Drills", ParentID: "GEN_TOOLS"},
	}
	if err := repo.BackfillParents(context.Background(), batch); err != nil {
		t.Fatalf("BackfillParents: %v", err)
	}
	expectMet(t, mock)
}

func TestBackfillParents_EmptyBatchIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	if err := repo.BackfillParents(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	expectMet(t, mock)
}
