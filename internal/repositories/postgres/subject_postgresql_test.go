package postgres

import (
	"context"
	"strings"
	"testing"
)

// The database enforces name and code uniqueness with partial indexes over
// active rows only, so a deactivated subject's name or code stays reusable.
// The pre-check queries have to agree with that scope.
func TestSubjectExistenceChecksScopeToActiveRows(t *testing.T) {
	db, recorder := newDryRunDB(t)
	repo := NewSubjectPostgreSQL(db, nil)

	if _, err := repo.ExistsByName(context.Background(), nil, "Algebra", nil); err != nil {
		t.Fatalf("ExistsByName returned error: %v", err)
	}
	if _, err := repo.ExistsByCode(context.Background(), nil, "ALG-101", nil); err != nil {
		t.Fatalf("ExistsByCode returned error: %v", err)
	}

	if len(recorder.statements) != 2 {
		t.Fatalf("expected 2 queries, got %d: %v", len(recorder.statements), recorder.statements)
	}
	for _, sql := range recorder.statements {
		if !strings.Contains(sql, "is_active") {
			t.Errorf("uniqueness check counts inactive rows: %q", sql)
		}
	}
}

func TestSubjectExistenceChecksExcludeID(t *testing.T) {
	db, recorder := newDryRunDB(t)
	repo := NewSubjectPostgreSQL(db, nil)

	excludeID := uint(7)
	if _, err := repo.ExistsByName(context.Background(), nil, "Algebra", &excludeID); err != nil {
		t.Fatalf("ExistsByName returned error: %v", err)
	}

	if len(recorder.statements) != 1 {
		t.Fatalf("expected 1 query, got %d", len(recorder.statements))
	}
	if !strings.Contains(recorder.statements[0], "id <>") {
		t.Errorf("update-path check does not exclude the record itself: %q", recorder.statements[0])
	}
}
