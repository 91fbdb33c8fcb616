// Package leveling awards XP for chat activity and tracks member levels.
package leveling

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

// Clock abstracts time for cooldown tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Config struct {
	XPMin    int
	XPMax    int
	Cooldown time.Duration
	Curve    float64
}

type Engine struct {
	cfg    Config
	store  *storage.Store
	logger *zap.Logger
	clock  Clock
	rng    *rand.Rand

	mu       sync.Mutex
	lastGain map[string]time.Time
}

func NewEngine(cfg Config, store *storage.Store, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		clock:    systemClock{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		lastGain: make(map[string]time.Time),
	}
}

func (e *Engine) SetClock(clock Clock) {
	e.clock = clock
}

// Level maps cumulative XP to a level on the square root curve.
func (e *Engine) Level(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(e.cfg.Curve * math.Sqrt(float64(xp)))
}

// XPForLevel is the inverse of Level, the minimum XP a level requires.
func (e *Engine) XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	base := float64(level) / e.cfg.Curve
	return int64(math.Round(base * base))
}

type Gain struct {
	XP        int64
	Level     int
	LeveledUp bool
}

// HandleMessage awards random XP for a message, subject to the per-user
// cooldown. It reports the new totals and whether the member leveled up.
// A message inside the cooldown returns a zero Gain and no error.
func (e *Engine) HandleMessage(ctx context.Context, guildID, userID string) (Gain, error) {
	now := e.clock.Now()
	key := guildID + ":" + userID

	e.mu.Lock()
	if last, ok := e.lastGain[key]; ok && now.Sub(last) < e.cfg.Cooldown {
		e.mu.Unlock()
		return Gain{}, nil
	}
	e.lastGain[key] = now
	e.mu.Unlock()

	before := 0
	if rec, err := e.store.GetLevel(ctx, guildID, userID); err == nil {
		before = rec.Level
	} else if !errors.Is(err, storage.ErrNoLevelData) {
		return Gain{}, err
	}

	amount := int64(e.cfg.XPMin + e.rng.Intn(e.cfg.XPMax-e.cfg.XPMin+1))
	rec, err := e.store.AddXP(ctx, guildID, userID, amount, e.Level, now)
	if err != nil {
		return Gain{}, err
	}

	gain := Gain{XP: rec.XP, Level: rec.Level, LeveledUp: rec.Level > before}
	if gain.LeveledUp {
		e.logger.Info("level up",
			zap.String("guild", guildID),
			zap.String("user", userID),
			zap.Int("level", rec.Level))
	}
	return gain, nil
}

// SetLevel pins a member to an exact level, storing the matching base XP.
func (e *Engine) SetLevel(ctx context.Context, guildID, userID string, level int) error {
	return e.store.SetLevel(ctx, guildID, userID, level, e.XPForLevel(level), e.clock.Now())
}

func (e *Engine) Rank(ctx context.Context, guildID, userID string) (storage.LevelRecord, int, int, error) {
	rec, err := e.store.GetLevel(ctx, guildID, userID)
	if err != nil {
		return storage.LevelRecord{}, 0, 0, err
	}
	rank, total, err := e.store.LevelRank(ctx, guildID, userID)
	if err != nil {
		return storage.LevelRecord{}, 0, 0, err
	}
	return rec, rank, total, nil
}
