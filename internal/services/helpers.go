package services

import (
	"encoding/json"

	"github.com/edupath/content-service/internal/models"
	"gorm.io/datatypes"
)

// encodeOptions packs question options into their JSONB column value.
func encodeOptions(options []models.QuestionOption) datatypes.JSON {
	if options == nil {
		options = []models.QuestionOption{}
	}
	raw, _ := json.Marshal(options)
	return raw
}

// pageFromOffset converts an offset/limit pair back into a 1-based page
// number for the pagination envelope.
func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	if offset < 0 {
		offset = 0
	}
	return offset/limit + 1
}

// clampLimit applies a default and an upper bound to a page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
