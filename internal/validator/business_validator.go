package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/edupath/content-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	subjectCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]{2,20}$`)
	lessonSlugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSubjectCreate validates subject creation business rules
func (bv *BusinessValidator) ValidateSubjectCreate(req *SubjectCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateClassification(req.ExamTypes, "exam_types")...)
	errors = append(errors, bv.validateClassification(req.Countries, "countries")...)

	return errors
}

// ValidateSubjectUpdate validates subject update business rules
func (bv *BusinessValidator) ValidateSubjectUpdate(req *SubjectUpdateRequest, existing *models.Subject) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Reactivation must go through status, not the is_active flag alone
	if req.IsActive != nil && *req.IsActive && req.Status != nil && *req.Status == models.SubjectInactive {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "cannot be inactive when is_active is true",
			Value:   *req.Status,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateQuizCreate validates quiz creation business rules
func (bv *BusinessValidator) ValidateQuizCreate(req *QuizCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateIDList(req.QuestionIDs, "question_ids")...)
	errors = append(errors, bv.validateIDList(req.TopicIDs, "topic_ids")...)

	return errors
}

// ValidateQuizUpdate validates quiz update business rules
func (bv *BusinessValidator) ValidateQuizUpdate(req *QuizUpdateRequest, existing *models.Quiz) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateIDList(req.QuestionIDs, "question_ids")...)
	errors = append(errors, bv.validateIDList(req.TopicIDs, "topic_ids")...)

	return errors
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateQuestionFormatRules(req.Format, req.Options, req.CorrectAnswer)...)

	return errors
}

// ValidateQuestionUpdate validates question update business rules
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Format != nil {
		answer := existing.CorrectAnswer
		if req.CorrectAnswer != nil {
			answer = *req.CorrectAnswer
		}
		options := req.Options
		errors = append(errors, bv.validateQuestionFormatRules(*req.Format, options, answer)...)
	}

	return errors
}

// ValidateRetakeStart validates whether a new quiz attempt may be recorded.
// The attempt cap is not terminal: once the cooldown window after the last
// attempt has elapsed, a further retake is allowed.
func (bv *BusinessValidator) ValidateRetakeStart(policy models.RetakePolicy, attemptCount int, lastAttemptAt *time.Time, now time.Time) ValidationErrors {
	var errors ValidationErrors

	if attemptCount < policy.MaxAttempts {
		return nil
	}

	if lastAttemptAt != nil && policy.CooldownHours > 0 {
		nextAllowed := policy.NextRetakeTime(*lastAttemptAt)
		if now.Before(nextAllowed) {
			errors = append(errors, ValidationError{
				Field:   "cooldown",
				Message: fmt.Sprintf("retake not available until %s", nextAllowed.Format(time.RFC3339)),
				Value:   lastAttemptAt,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Subject name validation (2-100 characters)
	bv.validate.RegisterValidation("subject_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 2 && len(name) <= 100
	})

	// Subject code validation (2-20 letters, digits, dashes)
	bv.validate.RegisterValidation("subject_code", func(fl validator.FieldLevel) bool {
		return subjectCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	// Title validation shared by lessons and quizzes (2-200 characters)
	bv.validate.RegisterValidation("content_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 2 && len(title) <= 200
	})

	// Lesson slug validation (lowercase kebab case)
	bv.validate.RegisterValidation("lesson_slug", func(fl validator.FieldLevel) bool {
		slug := fl.Field().String()
		return len(slug) <= 200 && lessonSlugPattern.MatchString(slug)
	})

	// Max attempts validation (1-10)
	bv.validate.RegisterValidation("max_attempts", func(fl validator.FieldLevel) bool {
		attempts := fl.Field().Int()
		return attempts >= 1 && attempts <= 10
	})

	// Points range validation
	bv.validate.RegisterValidation("points_range", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 1 && points <= 100
	})

	// question format validation
	bv.validate.RegisterValidation("question_format", func(fl validator.FieldLevel) bool {
		format := fl.Field().String()
		validFormats := []models.QuestionFormat{models.MultipleChoice, models.TrueFalse, models.ShortAnswer}
		for _, vf := range validFormats {
			if models.QuestionFormat(format) == vf {
				return true
			}
		}
		return false
	})

	// difficulty level validation
	bv.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		validLevels := []models.DifficultyLevel{models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced}
		for _, vl := range validLevels {
			if models.DifficultyLevel(level) == vl {
				return true
			}
		}
		return false
	})
}

// validateQuestionFormatRules checks the option set against the format
func (bv *BusinessValidator) validateQuestionFormatRules(format models.QuestionFormat, options []models.QuestionOption, correctAnswer string) ValidationErrors {
	var errors ValidationErrors

	switch format {
	case models.MultipleChoice:
		if len(options) < 2 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "multiple choice questions need at least 2 options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	case models.TrueFalse:
		if len(options) > 2 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "true/false questions cannot have more than 2 options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	case models.ShortAnswer:
		if strings.TrimSpace(correctAnswer) == "" {
			errors = append(errors, ValidationError{
				Field:   "correct_answer",
				Message: "short answer questions need a correct answer",
				Value:   correctAnswer,
				Rule:    "business_logic",
			})
		}
	}

	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("options[%d]", i),
				Message: "option text cannot be empty",
				Value:   opt.Text,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// validateClassification rejects empty entries in classification arrays
func (bv *BusinessValidator) validateClassification(values []string, field string) ValidationErrors {
	var errors ValidationErrors

	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "entry cannot be empty",
				Value:   v,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// validateIDList rejects zero and duplicate ids in reference arrays
func (bv *BusinessValidator) validateIDList(ids []uint, field string) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[uint]bool, len(ids))
	for i, id := range ids {
		if id == 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "id must be positive",
				Value:   id,
				Rule:    "business_logic",
			})
			continue
		}
		if seen[id] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "duplicate id",
				Value:   id,
				Rule:    "business_logic",
			})
		}
		seen[id] = true
	}

	return errors
}
