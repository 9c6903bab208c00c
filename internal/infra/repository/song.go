package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verseroom/verseroom/internal/attribution"
	"github.com/verseroom/verseroom/internal/domain"
	"github.com/verseroom/verseroom/internal/infra/database/models"
	"github.com/verseroom/verseroom/internal/textdiff"
)

var tracer = otel.Tracer("repository")

const contributorCacheTTL = 60 // seconds

type SongRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewSongRepository(db *gorm.DB, mc *memcache.Client) *SongRepository {
	return &SongRepository{db: db, mc: mc}
}

func (r *SongRepository) Create(ctx context.Context, song domain.Song) (domain.Song, error) {
	row := models.Song{
		Title:  song.Title,
		Artist: song.Artist,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Song{}, errors.Wrap(err, "failed to create song")
	}
	return songFromModel(row), nil
}

func (r *SongRepository) Get(ctx context.Context, id int64) (domain.Song, error) {
	var row models.Song
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Song{}, domain.NotFoundError{Resource: "song"}
		}
		return domain.Song{}, err
	}
	return songFromModel(row), nil
}

// ApplyEdit runs the read-diff-redistribute-write sequence for one text
// field in a single transaction, locking the song row and its contributor
// rows so concurrent edits serialize against each other.
func (r *SongRepository) ApplyEdit(ctx context.Context, edit domain.EditEvent) (domain.EditResult, error) {
	ctx, span := tracer.Start(ctx, "Song.Repository.ApplyEdit")
	defer span.End()

	var result domain.EditResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := applyEdit(tx, edit)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		err = translateTxError(err)
		span.RecordError(err)
		return domain.EditResult{}, err
	}

	if !result.NoOp {
		invalidateContributorCache(r.mc, edit.SongID, edit.Kind)
	}
	return result, nil
}

// applyEdit works against an already-open transaction so the suggestion
// approval path can share it with its own status transition.
func applyEdit(tx *gorm.DB, edit domain.EditEvent) (domain.EditResult, error) {
	var song models.Song
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&song, "id = ?", edit.SongID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EditResult{}, domain.NotFoundError{Resource: "song"}
		}
		return domain.EditResult{}, err
	}

	var editor models.User
	err = tx.Take(&editor, "id = ?", edit.EditorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EditResult{}, domain.InvalidEditorError{UserID: edit.EditorID}
		}
		return domain.EditResult{}, err
	}

	oldPtr := song.Lyrics
	if edit.Kind == domain.KindSync {
		oldPtr = song.SyncedLyrics
	}
	oldText := ""
	if oldPtr != nil {
		oldText = textdiff.Normalize(*oldPtr)
	}
	newText := textdiff.Normalize(edit.Body)
	newRev := revisionOf(newText)

	if oldPtr == nil && newText == "" {
		// clearing a field that never existed
		return domain.EditResult{NoOp: true}, nil
	}
	if oldPtr != nil && oldText == newText {
		contributors, err := lockContributors(tx, edit.SongID, edit.Kind)
		if err != nil {
			return domain.EditResult{}, err
		}
		return domain.EditResult{
			NoOp:         true,
			Revision:     newRev,
			Contributors: contributorsFromModels(contributors),
		}, nil
	}

	segments := textdiff.Diff(oldText, newText)

	rows, err := lockContributors(tx, edit.SongID, edit.Kind)
	if err != nil {
		return domain.EditResult{}, err
	}
	prior := make(map[int64]int, len(rows))
	for _, row := range rows {
		prior[row.UserID] = row.Percent
	}

	next := attribution.Redistribute(segments, prior, edit.EditorID)
	if len(next) == 0 {
		// content cleared: every historical row stays, at zero
		next = make(map[int64]int, len(prior))
		for id := range prior {
			next[id] = 0
		}
	}

	userIDs := make([]int64, 0, len(next))
	for id := range next {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	now := time.Now()
	upserts := make([]models.Contributor, 0, len(userIDs))
	for _, userID := range userIDs {
		upserts = append(upserts, models.Contributor{
			SongID:    edit.SongID,
			UserID:    userID,
			Kind:      string(edit.Kind),
			Percent:   next[userID],
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(upserts) > 0 {
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "song_id"}, {Name: "user_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
		}).Create(&upserts).Error
		if err != nil {
			return domain.EditResult{}, err
		}
	}

	updates := map[string]any{"updated_at": now}
	if edit.Kind == domain.KindSync {
		updates["synced_lyrics"] = newText
		updates["synced_rev"] = newRev
	} else {
		updates["lyrics"] = newText
		updates["lyrics_rev"] = newRev
	}
	err = tx.Model(&models.Song{}).Where("id = ?", edit.SongID).Updates(updates).Error
	if err != nil {
		return domain.EditResult{}, err
	}

	return domain.EditResult{
		Revision:     newRev,
		Contributors: contributorsFromModels(upserts),
	}, nil
}

// Contributors reads the contributor table, through memcached when
// configured. The cache is invalidated whenever an edit lands.
func (r *SongRepository) Contributors(ctx context.Context, songID int64, kind domain.TextKind) ([]domain.Contributor, error) {
	key := contributorCacheKey(songID, kind)
	if r.mc != nil {
		if item, err := r.mc.Get(key); err == nil {
			var cached []domain.Contributor
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var rows []models.Contributor
	err := r.db.WithContext(ctx).
		Where("song_id = ? AND kind = ?", songID, string(kind)).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&models.Song{}).Where("id = ?", songID).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, domain.NotFoundError{Resource: "song"}
		}
	}

	contributors := contributorsFromModels(rows)
	if r.mc != nil {
		if payload, err := json.Marshal(contributors); err == nil {
			_ = r.mc.Set(&memcache.Item{Key: key, Value: payload, Expiration: contributorCacheTTL})
		}
	}
	return contributors, nil
}

func lockContributors(tx *gorm.DB, songID int64, kind domain.TextKind) ([]models.Contributor, error) {
	var rows []models.Contributor
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("song_id = ? AND kind = ?", songID, string(kind)).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func contributorCacheKey(songID int64, kind domain.TextKind) string {
	return fmt.Sprintf("vr:contrib:%d:%s", songID, kind)
}

func invalidateContributorCache(mc *memcache.Client, songID int64, kind domain.TextKind) {
	if mc == nil {
		return
	}
	_ = mc.Delete(contributorCacheKey(songID, kind))
}

func revisionOf(normalized string) string {
	if normalized == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.HashString(normalized))
}

// translateTxError maps backend concurrency failures to ConflictError so
// callers can retry, and passes domain errors through untouched.
func translateTxError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidEditor) ||
		errors.Is(err, domain.ErrConflict) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") {
		return domain.ConflictError{Cause: msg}
	}
	return err
}

func songFromModel(row models.Song) domain.Song {
	return domain.Song{
		ID:           row.ID,
		Title:        row.Title,
		Artist:       row.Artist,
		Lyrics:       row.Lyrics,
		LyricsRev:    row.LyricsRev,
		SyncedLyrics: row.SyncedLyrics,
		SyncedRev:    row.SyncedRev,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func contributorsFromModels(rows []models.Contributor) []domain.Contributor {
	contributors := make([]domain.Contributor, 0, len(rows))
	for _, row := range rows {
		contributors = append(contributors, domain.Contributor{
			SongID:  row.SongID,
			UserID:  row.UserID,
			Kind:    domain.TextKind(row.Kind),
			Percent: row.Percent,
		})
	}
	return contributors
}
