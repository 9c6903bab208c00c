package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/verseroom/verseroom"
	"github.com/verseroom/verseroom/internal/domain"
)

type mockSongRepo struct {
	song    domain.Song
	result  domain.EditResult
	editErr error
	edits   []domain.EditEvent
}

func (m *mockSongRepo) Create(ctx context.Context, song domain.Song) (domain.Song, error) {
	song.ID = 1
	m.song = song
	return song, nil
}

func (m *mockSongRepo) Get(ctx context.Context, id int64) (domain.Song, error) {
	if id != m.song.ID {
		return domain.Song{}, domain.NotFoundError{Resource: "song"}
	}
	return m.song, nil
}

func (m *mockSongRepo) ApplyEdit(ctx context.Context, edit domain.EditEvent) (domain.EditResult, error) {
	m.edits = append(m.edits, edit)
	if m.editErr != nil {
		return domain.EditResult{}, m.editErr
	}
	return m.result, nil
}

func (m *mockSongRepo) Contributors(ctx context.Context, songID int64, kind domain.TextKind) ([]domain.Contributor, error) {
	return []domain.Contributor{{SongID: songID, UserID: 7, Kind: kind, Percent: 100}}, nil
}

type mockPublisher struct {
	events []verseroom.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event verseroom.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func TestSongCreateTrimsTitle(t *testing.T) {
	repo := &mockSongRepo{}
	uc := NewSongUsecase(repo, nil)

	song, err := uc.Create(context.Background(), "  Silver Thread  ", " June Holloway ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if song.Title != "Silver Thread" {
		t.Fatalf("expected trimmed title, got %q", song.Title)
	}
	if song.Artist != "June Holloway" {
		t.Fatalf("expected trimmed artist, got %q", song.Artist)
	}
}

func TestSongCreateRejectsEmptyTitle(t *testing.T) {
	uc := NewSongUsecase(&mockSongRepo{}, nil)

	_, err := uc.Create(context.Background(), "   ", "someone")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSongEditTextPublishesEvent(t *testing.T) {
	repo := &mockSongRepo{
		result: domain.EditResult{
			Revision: "abc123",
			Contributors: []domain.Contributor{
				{SongID: 1, UserID: 7, Kind: domain.KindLyrics, Percent: 100},
			},
		},
	}
	pub := &mockPublisher{}
	uc := NewSongUsecase(repo, pub)

	edit := domain.EditEvent{SongID: 1, Kind: domain.KindLyrics, EditorID: 7, Body: "line one"}
	result, err := uc.EditText(context.Background(), edit)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if result.Revision != "abc123" {
		t.Fatalf("unexpected revision %q", result.Revision)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.Kind != verseroom.EventKindTextUpdated {
		t.Fatalf("unexpected event kind %q", event.Kind)
	}
	if event.SongID != 1 || event.EditorID != 7 {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	if len(event.Contributors) != 1 || event.Contributors[0].Percent != 100 {
		t.Fatalf("unexpected event contributors: %+v", event.Contributors)
	}
}

func TestSongEditTextNoOpSkipsPublish(t *testing.T) {
	repo := &mockSongRepo{result: domain.EditResult{NoOp: true, Revision: "abc123"}}
	pub := &mockPublisher{}
	uc := NewSongUsecase(repo, pub)

	result, err := uc.EditText(context.Background(), domain.EditEvent{SongID: 1, Kind: domain.KindLyrics, EditorID: 7})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !result.NoOp {
		t.Fatalf("expected noop result")
	}
	if len(pub.events) != 0 {
		t.Fatalf("noop edit must not publish, got %d events", len(pub.events))
	}
}

func TestSongEditTextPublishFailureIsNotFatal(t *testing.T) {
	repo := &mockSongRepo{result: domain.EditResult{Revision: "abc123"}}
	pub := &mockPublisher{err: errors.New("redis down")}
	uc := NewSongUsecase(repo, pub)

	_, err := uc.EditText(context.Background(), domain.EditEvent{SongID: 1, Kind: domain.KindLyrics, EditorID: 7})
	if err != nil {
		t.Fatalf("publish failure must not fail the edit: %v", err)
	}
}

func TestSongEditTextRepositoryErrorPassesThrough(t *testing.T) {
	repo := &mockSongRepo{editErr: domain.NotFoundError{Resource: "song"}}
	pub := &mockPublisher{}
	uc := NewSongUsecase(repo, pub)

	_, err := uc.EditText(context.Background(), domain.EditEvent{SongID: 99, Kind: domain.KindLyrics, EditorID: 7})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed edit must not publish")
	}
}
