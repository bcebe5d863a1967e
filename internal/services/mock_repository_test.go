package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"gorm.io/gorm"
)

// mockRepository implements repositories.Repository with pluggable
// per-resource mocks.
type mockRepository struct {
	subject    *mockSubjectRepo
	lesson     *mockLessonRepo
	quiz       *mockQuizRepo
	quizResult *mockQuizResultRepo
	question   *mockQuestionRepo
	progress   *mockProgressRepo
	user       *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		subject:    &mockSubjectRepo{},
		lesson:     &mockLessonRepo{},
		quiz:       &mockQuizRepo{},
		quizResult: &mockQuizResultRepo{},
		question:   &mockQuestionRepo{},
		progress:   &mockProgressRepo{},
		user:       &mockUserRepo{},
	}
}

func (m *mockRepository) Subject() repositories.SubjectRepository       { return m.subject }
func (m *mockRepository) Lesson() repositories.LessonRepository         { return m.lesson }
func (m *mockRepository) Quiz() repositories.QuizRepository             { return m.quiz }
func (m *mockRepository) QuizResult() repositories.QuizResultRepository { return m.quizResult }
func (m *mockRepository) Question() repositories.QuestionRepository    { return m.question }
func (m *mockRepository) Progress() repositories.ProgressRepository    { return m.progress }
func (m *mockRepository) User() repositories.UserRepository            { return m.user }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func notFound(resource string, id any) error {
	return fmt.Errorf("%s %v: %w", resource, id, repositories.ErrNotFound)
}

// ===== SUBJECT =====

type mockSubjectRepo struct {
	subjects     map[uint]*models.Subject
	nameTaken    bool
	codeTaken    bool
	created      []*models.Subject
	updated      []*models.Subject
	statsSummary *repositories.SubjectStatsSummary
}

func (m *mockSubjectRepo) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	subject.ID = uint(len(m.created) + 1)
	m.created = append(m.created, subject)
	return nil
}

func (m *mockSubjectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, notFound("subject", id)
}

func (m *mockSubjectRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *mockSubjectRepo) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	m.updated = append(m.updated, subject)
	return nil
}

func (m *mockSubjectRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubjectFilters) ([]*models.Subject, int64, error) {
	out := make([]*models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *mockSubjectRepo) GetFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Subject, error) {
	return nil, nil
}

func (m *mockSubjectRepo) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID *uint) (bool, error) {
	return m.codeTaken, nil
}

func (m *mockSubjectRepo) RefreshStats(ctx context.Context, tx *gorm.DB, id uint) error { return nil }

func (m *mockSubjectRepo) GetStatsSummary(ctx context.Context, tx *gorm.DB) (*repositories.SubjectStatsSummary, error) {
	return m.statsSummary, nil
}

// ===== LESSON =====

type mockLessonRepo struct {
	lessons   map[uint]*models.Lesson
	slugTaken bool
	created   []*models.Lesson
	updated   []*models.Lesson
}

func (m *mockLessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	lesson.ID = uint(len(m.created) + 1)
	m.created = append(m.created, lesson)
	return nil
}

func (m *mockLessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	return nil, notFound("lesson", id)
}

func (m *mockLessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	m.updated = append(m.updated, lesson)
	return nil
}

func (m *mockLessonRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	return nil, 0, nil
}

func (m *mockLessonRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Lesson, error) {
	return nil, nil
}

func (m *mockLessonRepo) ExistsBySlug(ctx context.Context, tx *gorm.DB, subjectID uint, slug string, excludeID *uint) (bool, error) {
	return m.slugTaken, nil
}

// ===== QUIZ =====

type mockQuizRepo struct {
	quizzes     map[uint]*models.Quiz
	hasResults  bool
	hardDeleted []uint
	created     []*models.Quiz
	updated     []*models.Quiz
	bulkResult  *repositories.BulkUpdateResult
	bulkPatch   map[string]interface{}
}

func (m *mockQuizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	quiz.ID = uint(len(m.created) + 1)
	m.created = append(m.created, quiz)
	return nil
}

func (m *mockQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	if q, ok := m.quizzes[id]; ok {
		return q, nil
	}
	return nil, notFound("quiz", id)
}

func (m *mockQuizRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *mockQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	m.updated = append(m.updated, quiz)
	return nil
}

func (m *mockQuizRepo) HardDelete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.hardDeleted = append(m.hardDeleted, id)
	return nil
}

func (m *mockQuizRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	return nil, 0, nil
}

func (m *mockQuizRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	return nil, 0, nil
}

func (m *mockQuizRepo) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Quiz, error) {
	return nil, nil
}

func (m *mockQuizRepo) BulkUpdate(ctx context.Context, tx *gorm.DB, ids []uint, patch map[string]interface{}) (*repositories.BulkUpdateResult, error) {
	m.bulkPatch = patch
	if m.bulkResult != nil {
		return m.bulkResult, nil
	}
	return &repositories.BulkUpdateResult{MatchedCount: int64(len(ids)), ModifiedCount: int64(len(ids))}, nil
}

func (m *mockQuizRepo) HasResults(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return m.hasResults, nil
}

// ===== QUIZ RESULT =====

type mockQuizResultRepo struct {
	results      []*models.QuizResult
	retakeStatus *repositories.RetakeStatus
	created      []*models.QuizResult
}

func (m *mockQuizResultRepo) Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error {
	result.ID = uint(len(m.created) + 1)
	result.CreatedAt = time.Now()
	m.created = append(m.created, result)
	return nil
}

func (m *mockQuizResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizResult, error) {
	return nil, notFound("quiz result", id)
}

func (m *mockQuizResultRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	return m.results, int64(len(m.results)), nil
}

func (m *mockQuizResultRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizResult, error) {
	return m.results, nil
}

func (m *mockQuizResultRepo) GetRetakeStatus(ctx context.Context, tx *gorm.DB, quizID uint, userID string) (*repositories.RetakeStatus, error) {
	if m.retakeStatus != nil {
		return m.retakeStatus, nil
	}
	return &repositories.RetakeStatus{}, nil
}

func (m *mockQuizResultRepo) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	return int64(len(m.results)), nil
}

// ===== QUESTION =====

type mockQuestionRepo struct {
	questions  map[uint]*models.Question
	created    []*models.Question
	updated    []*models.Question
	deleted    []uint
	bulkResult *repositories.BulkUpdateResult
}

func (m *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	question.ID = uint(len(m.created) + 1)
	m.created = append(m.created, question)
	return nil
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, notFound("question", id)
}

func (m *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	m.updated = append(m.updated, question)
	return nil
}

func (m *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	m.created = append(m.created, questions...)
	return nil
}

func (m *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	out := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) BulkUpdate(ctx context.Context, tx *gorm.DB, ids []uint, patch map[string]interface{}) (*repositories.BulkUpdateResult, error) {
	if m.bulkResult != nil {
		return m.bulkResult, nil
	}
	return &repositories.BulkUpdateResult{MatchedCount: int64(len(ids)), ModifiedCount: int64(len(ids))}, nil
}

func (m *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	return nil, 0, nil
}

func (m *mockQuestionRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	return nil, nil
}

func (m *mockQuestionRepo) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	return 0, nil
}

// ===== PROGRESS =====

type mockProgressRepo struct {
	records  map[string]*models.Progress // key: userID:lessonID
	upserted []*models.Progress
}

func progressKey(userID string, lessonID uint) string {
	return fmt.Sprintf("%s:%d", userID, lessonID)
}

func (m *mockProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, progress *models.Progress) error {
	if m.records == nil {
		m.records = map[string]*models.Progress{}
	}
	m.records[progressKey(progress.UserID, progress.LessonID)] = progress
	m.upserted = append(m.upserted, progress)
	return nil
}

func (m *mockProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID string, lessonID uint) (*models.Progress, error) {
	if p, ok := m.records[progressKey(userID, lessonID)]; ok {
		return p, nil
	}
	return nil, notFound("progress", lessonID)
}

func (m *mockProgressRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ProgressFilters) ([]*models.Progress, int64, error) {
	out := make([]*models.Progress, 0, len(m.records))
	for _, p := range m.records {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProgressRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ProgressFilters) ([]*models.Progress, int64, error) {
	out := make([]*models.Progress, 0, len(m.records))
	for _, p := range m.records {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

// ===== USER =====

type mockUserRepo struct {
	users map[string]*models.User
	roles map[string]models.UserRole
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, notFound("user", id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, notFound("user", email)
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	return m.roles[id] == role, nil
}

func (m *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}
