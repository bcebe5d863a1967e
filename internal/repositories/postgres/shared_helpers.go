package postgres

import (
	"sort"
	"strings"

	"github.com/edupath/content-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder, defaultSort string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":       true,
		"updated_at":       true,
		"id":               true,
		"name":             true,
		"code":             true,
		"title":            true,
		"status":           true,
		"difficulty":       true,
		"format":           true,
		"score":            true,
		"order":            true,
		"total_points":     true,
		"duration_minutes": true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = defaultSort
	}

	if strings.EqualFold(sortOrder, "desc") {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(`"` + sortBy + `" ` + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// ChangedRowsPredicate builds a clause matching rows a patch would actually
// change. One differing column is enough to make a row a candidate, so the
// per-column comparisons are ORed. IS DISTINCT FROM keeps NULL columns
// comparable. Columns are sorted so the generated SQL is deterministic.
func ChangedRowsPredicate(patch map[string]interface{}) (string, []interface{}) {
	columns := make([]string, 0, len(patch))
	for column := range patch {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		parts[i] = `"` + column + `" IS DISTINCT FROM ?`
		args[i] = patch[column]
	}
	return strings.Join(parts, " OR "), args
}

// ApplySearch adds a case-insensitive substring clause over the given columns.
func (h *SharedHelpers) ApplySearch(query *gorm.DB, term string, columns ...string) *gorm.DB {
	if term == "" || len(columns) == 0 {
		return query
	}

	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}

	return query.Where(strings.Join(clauses, " OR "), args...)
}

// ApplySubjectFilters applies the recognized filter keys for subjects.
func (h *SharedHelpers) ApplySubjectFilters(query *gorm.DB, filters repositories.SubjectFilters) *gorm.DB {
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Country != nil {
		query = query.Where("countries @> ?", `["`+*filters.Country+`"]`)
	}
	if filters.ExamType != nil {
		query = query.Where("exam_types @> ?", `["`+*filters.ExamType+`"]`)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.IsPremium != nil {
		query = query.Where("is_premium = ?", *filters.IsPremium)
	}
	if filters.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filters.IsFeatured)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return h.ApplySearch(query, filters.Search, "name", "code", "category")
}

// ApplyQuizFilters applies the recognized filter keys for quizzes.
func (h *SharedHelpers) ApplyQuizFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return h.ApplySearch(query, filters.Search, "title", "description")
}

// ApplyQuestionFilters applies the recognized filter keys for questions.
func (h *SharedHelpers) ApplyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.Format != nil {
		query = query.Where("format = ?", *filters.Format)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Verified != nil {
		query = query.Where("verification_verified = ?", *filters.Verified)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return h.ApplySearch(query, filters.Search, "content")
}

// ApplyLessonFilters applies the recognized filter keys for lessons.
func (h *SharedHelpers) ApplyLessonFilters(query *gorm.DB, filters repositories.LessonFilters) *gorm.DB {
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return h.ApplySearch(query, filters.Search, "title", "description")
}
