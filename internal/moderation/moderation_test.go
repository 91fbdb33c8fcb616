package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

type fakePlatform struct {
	bans     []string
	unbans   []string
	kicks    []string
	timeouts []string
	cleared  []string
	purged   int
	dms      map[string]string
	dmErr    error
	failFor  map[string]error
}

func (f *fakePlatform) fail(userID string) error {
	if f.failFor == nil {
		return nil
	}
	return f.failFor[userID]
}

func (f *fakePlatform) BanMember(guildID, userID, reason string, deleteDays int) error {
	if err := f.fail(userID); err != nil {
		return err
	}
	f.bans = append(f.bans, userID)
	return nil
}

func (f *fakePlatform) UnbanMember(guildID, userID string) error {
	f.unbans = append(f.unbans, userID)
	return nil
}

func (f *fakePlatform) KickMember(guildID, userID, reason string) error {
	if err := f.fail(userID); err != nil {
		return err
	}
	f.kicks = append(f.kicks, userID)
	return nil
}

func (f *fakePlatform) TimeoutMember(guildID, userID string, until time.Time, reason string) error {
	f.timeouts = append(f.timeouts, userID)
	return nil
}

func (f *fakePlatform) ClearTimeout(guildID, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func (f *fakePlatform) PurgeMessages(channelID string, count int) (int, error) {
	f.purged = count
	return count, nil
}

func (f *fakePlatform) DirectMessage(userID, content string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	if f.dms == nil {
		f.dms = make(map[string]string)
	}
	f.dms[userID] = content
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

var (
	mod    = Actor{UserID: "mod", TopRolePosition: 10}
	owner  = Actor{UserID: "owner", TopRolePosition: 0, IsOwner: true}
	junior = Target{UserID: "junior", TopRolePosition: 2}
	senior = Target{UserID: "senior", TopRolePosition: 10}
)

func TestCheckHierarchy(t *testing.T) {
	if err := CheckHierarchy(mod, junior); err != nil {
		t.Fatalf("expected higher role to pass, got %v", err)
	}
	if err := CheckHierarchy(mod, senior); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("expected equal role to be rejected, got %v", err)
	}
	if err := CheckHierarchy(owner, senior); err != nil {
		t.Fatalf("expected owner to bypass hierarchy, got %v", err)
	}
}

func TestBanWritesModLog(t *testing.T) {
	service, platform, store := newTestService(t)
	ctx := context.Background()

	if err := service.Ban(ctx, "g", mod, junior, "raiding", 1); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if len(platform.bans) != 1 || platform.bans[0] != "junior" {
		t.Fatalf("expected junior banned, got %v", platform.bans)
	}

	logs, err := store.ListModLogs(ctx, "g", time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("list mod logs: %v", err)
	}
	if len(logs) != 1 || logs[0].ActionType != storage.ActionBan {
		t.Fatalf("expected one BAN entry, got %+v", logs)
	}
}

func TestBanRejectedByHierarchy(t *testing.T) {
	service, platform, _ := newTestService(t)

	err := service.Ban(context.Background(), "g", mod, senior, "nope", 0)
	if !errors.Is(err, ErrHierarchy) {
		t.Fatalf("expected hierarchy rejection, got %v", err)
	}
	if len(platform.bans) != 0 {
		t.Fatalf("hierarchy rejection should not reach the platform")
	}
}

func TestTempBanSchedulesUnban(t *testing.T) {
	service, _, store := newTestService(t)
	ctx := context.Background()

	if err := service.TempBan(ctx, "g", mod, junior, time.Hour, "cool off"); err != nil {
		t.Fatalf("temp ban: %v", err)
	}

	pending, err := store.ExpiredTempActions(ctx, time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("expired temp actions: %v", err)
	}
	if len(pending) != 1 || pending[0].ActionType != storage.ActionTempBan {
		t.Fatalf("expected a scheduled TEMPBAN, got %+v", pending)
	}
}

func TestMuteCapsDuration(t *testing.T) {
	service, platform, _ := newTestService(t)
	start := time.Now()
	service.SetClock(func() time.Time { return start })

	if err := service.Mute(context.Background(), "g", mod, junior, 90*24*time.Hour, "long"); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if len(platform.timeouts) != 1 {
		t.Fatalf("expected a timeout call")
	}
}

func TestMuteRequiresDuration(t *testing.T) {
	service, _, _ := newTestService(t)

	if err := service.Mute(context.Background(), "g", mod, junior, 0, ""); !errors.Is(err, ErrNoDuration) {
		t.Fatalf("expected ErrNoDuration, got %v", err)
	}
}

func TestWarnStoresWarning(t *testing.T) {
	service, _, store := newTestService(t)
	ctx := context.Background()

	if err := service.Warn(ctx, "g", mod, junior, "language"); err != nil {
		t.Fatalf("warn: %v", err)
	}
	count, err := store.CountWarnings(ctx, "g", "junior")
	if err != nil {
		t.Fatalf("count warnings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 warning, got %d", count)
	}
}

func TestWarnNotifiesTarget(t *testing.T) {
	service, platform, _ := newTestService(t)
	ctx := context.Background()

	if err := service.Warn(ctx, "g", mod, junior, "spam"); err != nil {
		t.Fatalf("warn: %v", err)
	}
	if err := service.Warn(ctx, "g", mod, junior, "more spam"); err != nil {
		t.Fatalf("warn: %v", err)
	}

	dm := platform.dms["junior"]
	if !strings.Contains(dm, "more spam") {
		t.Fatalf("expected the DM to carry the reason, got %q", dm)
	}
	if !strings.Contains(dm, "2 warning(s)") {
		t.Fatalf("expected the DM to carry the running total, got %q", dm)
	}
}

func TestWarnSucceedsWhenDMsClosed(t *testing.T) {
	service, platform, store := newTestService(t)
	platform.dmErr = errors.New("cannot send messages to this user")
	ctx := context.Background()

	if err := service.Warn(ctx, "g", mod, junior, "language"); err != nil {
		t.Fatalf("warn should not fail on a closed DM: %v", err)
	}
	count, err := store.CountWarnings(ctx, "g", "junior")
	if err != nil || count != 1 {
		t.Fatalf("expected the warning recorded, got %d (%v)", count, err)
	}
}

func TestMassBanAggregatesFailures(t *testing.T) {
	service, platform, _ := newTestService(t)
	platform.failFor = map[string]error{"u2": errors.New("missing permissions")}

	result, err := service.MassBan(context.Background(), "g", mod, []string{"u1", "u2", "u3"}, "raid cleanup")
	if err != nil {
		t.Fatalf("mass ban: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 ok and 1 failed, got %+v", result)
	}
}

func TestMassBanTargetLimit(t *testing.T) {
	service, _, _ := newTestService(t)

	ids := make([]string, MaxMassBanTargets+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	if _, err := service.MassBan(context.Background(), "g", mod, ids, ""); !errors.Is(err, ErrTooManyTargets) {
		t.Fatalf("expected ErrTooManyTargets, got %v", err)
	}
}

func TestMassKickTargetLimit(t *testing.T) {
	service, _, _ := newTestService(t)

	ids := make([]string, MaxMassKickTargets+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	if _, err := service.MassKick(context.Background(), "g", mod, ids, ""); !errors.Is(err, ErrTooManyTargets) {
		t.Fatalf("expected ErrTooManyTargets, got %v", err)
	}
}

func TestClearLogsSweep(t *testing.T) {
	service, platform, store := newTestService(t)
	ctx := context.Background()

	deleted, err := service.Clear(ctx, "g", "chan", mod, 25)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deleted != 25 || platform.purged != 25 {
		t.Fatalf("expected 25 purged, got %d", deleted)
	}

	logs, err := store.ListModLogs(ctx, "g", time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("list mod logs: %v", err)
	}
	if len(logs) != 1 || logs[0].ActionType != storage.ActionClear {
		t.Fatalf("expected a CLEAR entry, got %+v", logs)
	}
}
