package tickets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

type fakePlatform struct {
	nextID  int
	renames map[string]string
	deleted []string
}

func (f *fakePlatform) CreateTicketChannel(guildID, categoryID, userID string) (string, error) {
	f.nextID++
	return fmt.Sprintf("chan-%d", f.nextID), nil
}

func (f *fakePlatform) RenameChannel(channelID, name string) error {
	if f.renames == nil {
		f.renames = make(map[string]string)
	}
	f.renames[channelID] = name
	return nil
}

func (f *fakePlatform) DeleteChannel(channelID string) error {
	f.deleted = append(f.deleted, channelID)
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

func TestOpenAssignsSequentialNames(t *testing.T) {
	service, platform, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.Open(ctx, "g", "cat", "u1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := service.Open(ctx, "g", "cat", "u2")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if platform.renames[first.ChannelID] != "ticket-0001" {
		t.Fatalf("expected ticket-0001, got %q", platform.renames[first.ChannelID])
	}
	if platform.renames[second.ChannelID] != "ticket-0002" {
		t.Fatalf("expected ticket-0002, got %q", platform.renames[second.ChannelID])
	}
}

func TestOpenRejectsDuplicate(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Open(ctx, "g", "cat", "u"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := service.Open(ctx, "g", "cat", "u"); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
}

func TestCloseRenamesChannel(t *testing.T) {
	service, platform, store := newTestService(t)
	ctx := context.Background()

	ticket, err := service.Open(ctx, "g", "cat", "u")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	closed, err := service.Close(ctx, ticket.ChannelID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Number != ticket.Number {
		t.Fatalf("close returned a different ticket: %+v", closed)
	}
	if got := platform.renames[ticket.ChannelID]; got != "closed-ticket-0001" {
		t.Fatalf("expected closed-ticket-0001, got %q", got)
	}
	if len(platform.deleted) != 0 {
		t.Fatalf("close should keep the channel, got deletions %v", platform.deleted)
	}

	count, err := store.CountOpenTickets(ctx, "g")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no open tickets, got %d", count)
	}
}

func TestCloseNonTicketChannel(t *testing.T) {
	service, _, _ := newTestService(t)

	if _, err := service.Close(context.Background(), "random-chan"); !errors.Is(err, ErrNotATicket) {
		t.Fatalf("expected ErrNotATicket, got %v", err)
	}
}

func TestReopenAfterClose(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := service.Open(ctx, "g", "cat", "u")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := service.Close(ctx, ticket.ChannelID); err != nil {
		t.Fatalf("close: %v", err)
	}
	next, err := service.Open(ctx, "g", "cat", "u")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if next.Number != ticket.Number+1 {
		t.Fatalf("expected the next number, got %d after %d", next.Number, ticket.Number)
	}
}
