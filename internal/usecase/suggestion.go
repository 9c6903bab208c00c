package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/verseroom/verseroom"
	"github.com/verseroom/verseroom/internal/domain"
)

// SuggestionRepository defines storage for pending text suggestions.
// Approve must flip the status and apply the proposed edit in the same
// transaction.
type SuggestionRepository interface {
	Create(ctx context.Context, s domain.Suggestion) (domain.Suggestion, error)
	Get(ctx context.Context, id int64) (domain.Suggestion, error)
	List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error)
	Approve(ctx context.Context, id, reviewerID int64) (domain.Suggestion, domain.EditResult, error)
	Reject(ctx context.Context, id, reviewerID int64) (domain.Suggestion, error)
}

// Notifier tells a proposer their suggestion was resolved. Delivery is a
// side effect; failures never undo the resolution.
type Notifier interface {
	SuggestionResolved(ctx context.Context, s domain.Suggestion) error
}

type SuggestionUsecase struct {
	repo     SuggestionRepository
	notifier Notifier
	events   EventPublisher
}

func NewSuggestionUsecase(repo SuggestionRepository, notifier Notifier, events EventPublisher) *SuggestionUsecase {
	return &SuggestionUsecase{repo: repo, notifier: notifier, events: events}
}

func (uc *SuggestionUsecase) Submit(ctx context.Context, songID int64, kind domain.TextKind, proposerID int64, body string) (domain.Suggestion, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Suggestion{}, domain.ValidationError{Message: "suggestion body is empty"}
	}
	return uc.repo.Create(ctx, domain.Suggestion{
		SongID:     songID,
		Kind:       kind,
		Body:       body,
		ProposerID: proposerID,
		Status:     domain.SuggestionPending,
	})
}

func (uc *SuggestionUsecase) Get(ctx context.Context, id int64) (domain.Suggestion, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *SuggestionUsecase) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error) {
	return uc.repo.List(ctx, status, limit)
}

// Approve applies the suggested edit credited to the original proposer and
// marks the suggestion approved, atomically.
func (uc *SuggestionUsecase) Approve(ctx context.Context, id, reviewerID int64) (domain.Suggestion, domain.EditResult, error) {
	ctx, span := tracer.Start(ctx, "Suggestion.Usecase.Approve")
	defer span.End()

	suggestion, result, err := uc.repo.Approve(ctx, id, reviewerID)
	if err != nil {
		span.RecordError(err)
		return domain.Suggestion{}, domain.EditResult{}, err
	}

	uc.notifyResolved(ctx, suggestion)

	if uc.events != nil {
		if !result.NoOp {
			event := verseroom.Event{
				Kind:         verseroom.EventKindTextUpdated,
				SongID:       suggestion.SongID,
				TextKind:     string(suggestion.Kind),
				Revision:     result.Revision,
				EditorID:     suggestion.ProposerID,
				Contributors: toShares(result.Contributors),
				Timestamp:    time.Now(),
			}
			if err := uc.events.Publish(ctx, event); err != nil {
				span.RecordError(err)
			}
		}
		event := verseroom.Event{
			Kind:         verseroom.EventKindSuggestionResolved,
			SongID:       suggestion.SongID,
			TextKind:     string(suggestion.Kind),
			SuggestionID: suggestion.ID,
			Status:       string(suggestion.Status),
			Timestamp:    time.Now(),
		}
		if err := uc.events.Publish(ctx, event); err != nil {
			span.RecordError(err)
		}
	}

	return suggestion, result, nil
}

func (uc *SuggestionUsecase) Reject(ctx context.Context, id, reviewerID int64) (domain.Suggestion, error) {
	ctx, span := tracer.Start(ctx, "Suggestion.Usecase.Reject")
	defer span.End()

	suggestion, err := uc.repo.Reject(ctx, id, reviewerID)
	if err != nil {
		span.RecordError(err)
		return domain.Suggestion{}, err
	}

	uc.notifyResolved(ctx, suggestion)

	if uc.events != nil {
		event := verseroom.Event{
			Kind:         verseroom.EventKindSuggestionResolved,
			SongID:       suggestion.SongID,
			TextKind:     string(suggestion.Kind),
			SuggestionID: suggestion.ID,
			Status:       string(suggestion.Status),
			Timestamp:    time.Now(),
		}
		if err := uc.events.Publish(ctx, event); err != nil {
			span.RecordError(err)
		}
	}

	return suggestion, nil
}

func (uc *SuggestionUsecase) notifyResolved(ctx context.Context, s domain.Suggestion) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.SuggestionResolved(ctx, s); err != nil {
		slog.WarnContext(ctx, "failed to notify proposer",
			slog.Int64("suggestionId", s.ID),
			slog.Int64("proposerId", s.ProposerID),
			slog.String("error", err.Error()),
		)
	}
}
