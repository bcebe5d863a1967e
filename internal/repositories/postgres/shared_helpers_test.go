package postgres

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder captures every statement gorm builds so tests can assert on
// query shape without a live database.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

// newDryRunDB opens a gorm handle that builds SQL but never executes it.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()

	recorder := &sqlRecorder{}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{
		DryRun: true,
		Logger: recorder,
	})
	if err != nil {
		t.Fatalf("failed to open dry-run database: %v", err)
	}
	return db, recorder
}

func TestChangedRowsPredicate(t *testing.T) {
	t.Run("combines columns with OR in sorted order", func(t *testing.T) {
		condition, args := ChangedRowsPredicate(map[string]interface{}{
			"status":    "inactive",
			"is_active": false,
		})

		want := `"is_active" IS DISTINCT FROM ? OR "status" IS DISTINCT FROM ?`
		if condition != want {
			t.Errorf("condition = %q, want %q", condition, want)
		}
		if len(args) != 2 {
			t.Fatalf("expected 2 args, got %d", len(args))
		}
		if args[0] != false {
			t.Errorf("args[0] = %v, want false", args[0])
		}
		if args[1] != "inactive" {
			t.Errorf("args[1] = %v, want inactive", args[1])
		}
	})

	t.Run("single column has no OR", func(t *testing.T) {
		condition, args := ChangedRowsPredicate(map[string]interface{}{"points": 5})

		if condition != `"points" IS DISTINCT FROM ?` {
			t.Errorf("condition = %q", condition)
		}
		if len(args) != 1 || args[0] != 5 {
			t.Errorf("args = %v, want [5]", args)
		}
	})
}
