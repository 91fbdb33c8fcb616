package suggestions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

type fakePlatform struct {
	nextID    int
	posts     map[string]string
	reactions map[string][]string
}

func (f *fakePlatform) PostSuggestion(channelID, authorID, content string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	if f.posts == nil {
		f.posts = make(map[string]string)
	}
	f.posts[id] = content
	return id, nil
}

func (f *fakePlatform) AddReaction(channelID, messageID, emoji string) error {
	if f.reactions == nil {
		f.reactions = make(map[string][]string)
	}
	f.reactions[messageID] = append(f.reactions[messageID], emoji)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakePlatform, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	platform := &fakePlatform{}
	return NewService(platform, store, zap.NewNop()), platform, store
}

func TestSubmitPostsAndSeedsVotes(t *testing.T) {
	service, platform, _ := newTestService(t)

	sg, err := service.Submit(context.Background(), "g", "chan", "u", "add a movie night channel")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sg.ID == 0 || sg.Status != storage.SuggestionPending {
		t.Fatalf("unexpected suggestion record: %+v", sg)
	}

	reactions := platform.reactions[sg.MessageID]
	if len(reactions) != 2 || reactions[0] != "✅" || reactions[1] != "❌" {
		t.Fatalf("expected the two vote reactions, got %v", reactions)
	}
}

func TestSubmitLengthLimits(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, "g", "chan", "u", "short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	long := strings.Repeat("x", MaxLength+1)
	if _, err := service.Submit(ctx, "g", "chan", "u", long); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Submit(ctx, "g", "chan", "u1", "first idea, add karaoke"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := service.Submit(ctx, "g", "chan", "u2", "second idea, add trivia"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	listed, err := service.List(ctx, "g", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(listed))
	}
	if listed[0].UserID != "u2" {
		t.Fatalf("expected newest first, got %+v", listed)
	}
}

func TestReviewUpdatesStatus(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	sg, err := service.Submit(ctx, "g", "chan", "u", "give the bot more emotes")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := service.Review(ctx, sg.ID, true); err != nil {
		t.Fatalf("review: %v", err)
	}

	listed, err := service.List(ctx, "g", 1)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list: %v", err)
	}
	if listed[0].Status != storage.SuggestionApproved {
		t.Fatalf("expected approved, got %q", listed[0].Status)
	}
	if StatusEmoji(listed[0].Status) != "✅" {
		t.Fatalf("unexpected marker for %q", listed[0].Status)
	}
}
