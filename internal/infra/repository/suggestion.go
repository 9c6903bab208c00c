package repository

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verseroom/verseroom/internal/domain"
	"github.com/verseroom/verseroom/internal/infra/database/models"
)

type SuggestionRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewSuggestionRepository(db *gorm.DB, mc *memcache.Client) *SuggestionRepository {
	return &SuggestionRepository{db: db, mc: mc}
}

func (r *SuggestionRepository) Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error) {
	// reject submissions against unknown songs up front
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Song{}).Where("id = ?", s.SongID).Count(&exists).Error; err != nil {
		return domain.Suggestion{}, err
	}
	if exists == 0 {
		return domain.Suggestion{}, domain.NotFoundError{Resource: "song"}
	}

	row := models.Suggestion{
		SongID:     s.SongID,
		Kind:       string(s.Kind),
		Body:       s.Body,
		ProposerID: s.ProposerID,
		Status:     string(domain.SuggestionPending),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Suggestion{}, errors.Wrap(err, "failed to create suggestion")
	}
	return suggestionFromModel(row), nil
}

func (r *SuggestionRepository) Get(ctx context.Context, id int64) (domain.Suggestion, error) {
	var row models.Suggestion
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Suggestion{}, domain.NotFoundError{Resource: "suggestion"}
		}
		return domain.Suggestion{}, err
	}
	return suggestionFromModel(row), nil
}

func (r *SuggestionRepository) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Model(&models.Suggestion{}).Order("id desc").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []models.Suggestion
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	suggestions := make([]domain.Suggestion, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, suggestionFromModel(row))
	}
	return suggestions, nil
}

// Approve flips a pending suggestion to approved and applies the proposed
// edit, credited to the proposer, in the same transaction. A suggestion
// already resolved yields a ConflictError.
func (r *SuggestionRepository) Approve(ctx context.Context, id, reviewerID int64) (domain.Suggestion, domain.EditResult, error) {
	ctx, span := tracer.Start(ctx, "Suggestion.Repository.Approve")
	defer span.End()

	var suggestion domain.Suggestion
	var result domain.EditResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockPending(tx, id)
		if err != nil {
			return err
		}

		res, err := applyEdit(tx, domain.EditEvent{
			SongID:   row.SongID,
			Kind:     domain.TextKind(row.Kind),
			EditorID: row.ProposerID,
			Body:     row.Body,
		})
		if err != nil {
			return err
		}

		row.Status = string(domain.SuggestionApproved)
		row.ReviewerID = &reviewerID
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		suggestion = suggestionFromModel(row)
		result = res
		return nil
	})
	if err != nil {
		err = translateTxError(err)
		span.RecordError(err)
		return domain.Suggestion{}, domain.EditResult{}, err
	}

	if !result.NoOp {
		invalidateContributorCache(r.mc, suggestion.SongID, suggestion.Kind)
	}
	return suggestion, result, nil
}

func (r *SuggestionRepository) Reject(ctx context.Context, id, reviewerID int64) (domain.Suggestion, error) {
	var suggestion domain.Suggestion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockPending(tx, id)
		if err != nil {
			return err
		}
		row.Status = string(domain.SuggestionRejected)
		row.ReviewerID = &reviewerID
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		suggestion = suggestionFromModel(row)
		return nil
	})
	if err != nil {
		return domain.Suggestion{}, translateTxError(err)
	}
	return suggestion, nil
}

func lockPending(tx *gorm.DB, id int64) (models.Suggestion, error) {
	var row models.Suggestion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Suggestion{}, domain.NotFoundError{Resource: "suggestion"}
		}
		return models.Suggestion{}, err
	}
	if row.Status != string(domain.SuggestionPending) {
		return models.Suggestion{}, domain.ConflictError{Cause: "suggestion already resolved"}
	}
	return row, nil
}

func suggestionFromModel(row models.Suggestion) domain.Suggestion {
	return domain.Suggestion{
		ID:         row.ID,
		SongID:     row.SongID,
		Kind:       domain.TextKind(row.Kind),
		Body:       row.Body,
		ProposerID: row.ProposerID,
		Status:     domain.SuggestionStatus(row.Status),
		ReviewerID: row.ReviewerID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
