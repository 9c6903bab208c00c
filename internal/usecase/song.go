package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/verseroom/verseroom"
	"github.com/verseroom/verseroom/internal/domain"
)

var tracer = otel.Tracer("usecase")

// SongRepository defines storage operations for songs and their contributor
// tables. ApplyEdit must run the whole read-diff-redistribute-write sequence
// in one transaction.
type SongRepository interface {
	Create(ctx context.Context, song domain.Song) (domain.Song, error)
	Get(ctx context.Context, id int64) (domain.Song, error)
	ApplyEdit(ctx context.Context, edit domain.EditEvent) (domain.EditResult, error)
	Contributors(ctx context.Context, songID int64, kind domain.TextKind) ([]domain.Contributor, error)
}

// EventPublisher pushes realtime events to subscribed clients.
type EventPublisher interface {
	Publish(ctx context.Context, event verseroom.Event) error
}

type SongUsecase struct {
	repo   SongRepository
	events EventPublisher
}

func NewSongUsecase(repo SongRepository, events EventPublisher) *SongUsecase {
	return &SongUsecase{repo: repo, events: events}
}

func (uc *SongUsecase) Create(ctx context.Context, title, artist string) (domain.Song, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Song{}, domain.ValidationError{Message: "title is required"}
	}
	return uc.repo.Create(ctx, domain.Song{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)})
}

func (uc *SongUsecase) Get(ctx context.Context, id int64) (domain.Song, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *SongUsecase) Contributors(ctx context.Context, songID int64, kind domain.TextKind) ([]domain.Contributor, error) {
	return uc.repo.Contributors(ctx, songID, kind)
}

// EditText applies an edit to one of the song's text fields and recomputes
// attribution. A no-op edit succeeds without writing or publishing anything.
func (uc *SongUsecase) EditText(ctx context.Context, edit domain.EditEvent) (domain.EditResult, error) {
	ctx, span := tracer.Start(ctx, "Song.Usecase.EditText")
	defer span.End()

	result, err := uc.repo.ApplyEdit(ctx, edit)
	if err != nil {
		span.RecordError(err)
		return domain.EditResult{}, err
	}

	if !result.NoOp && uc.events != nil {
		event := verseroom.Event{
			Kind:         verseroom.EventKindTextUpdated,
			SongID:       edit.SongID,
			TextKind:     string(edit.Kind),
			Revision:     result.Revision,
			EditorID:     edit.EditorID,
			Contributors: toShares(result.Contributors),
			Timestamp:    time.Now(),
		}
		if err := uc.events.Publish(ctx, event); err != nil {
			// the edit is already committed; losing an event is tolerable
			span.RecordError(err)
			slog.WarnContext(ctx, "failed to publish text update event",
				slog.Int64("songId", edit.SongID),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

func toShares(contributors []domain.Contributor) []verseroom.ContributorShare {
	shares := make([]verseroom.ContributorShare, 0, len(contributors))
	for _, c := range contributors {
		shares = append(shares, verseroom.ContributorShare{UserID: c.UserID, Percent: c.Percent})
	}
	return shares
}
