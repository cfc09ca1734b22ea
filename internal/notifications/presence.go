package notifications

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineKey      = "presence:online"
	presenceLastSeenPrefix = "presence:last_seen:"
	presenceTTL            = 90 * time.Second
	presenceOfflineGrace   = 5 * time.Second
	presenceReapEvery      = 60 * time.Second
)

// PresenceConfig tunes presence tracking. Zero values mean defaults.
type PresenceConfig struct {
	LastSeenTTL   time.Duration
	OfflineGrace  time.Duration
	ReapEvery     time.Duration
	OnUserOnline  func(userID uint)
	OnUserOffline func(userID uint)
}

// PresenceTracker answers "is this user online" across every server
// instance. Local websocket connections are counted in memory; Redis holds
// the cluster-wide view as a membership set plus a per-user last-seen key
// with a TTL. A short grace window after the last local disconnect absorbs
// page reloads so they do not flap offline/online.
type PresenceTracker struct {
	rdb *redis.Client

	mu       sync.RWMutex
	local    map[uint]int         // live local connections per user
	pending  map[uint]*time.Timer // users inside their offline grace window
	notified map[uint]bool        // users whose offline transition already fired

	lastSeenTTL  time.Duration
	offlineGrace time.Duration
	reapEvery    time.Duration

	onOnline  func(userID uint)
	onOffline func(userID uint)

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresenceTracker builds a tracker. With a nil Redis client presence is
// local-only; with Redis a background sweep evicts entries whose last-seen
// key expired (instances that died without unregistering).
func NewPresenceTracker(rdb *redis.Client, cfg PresenceConfig) *PresenceTracker {
	p := &PresenceTracker{
		rdb:          rdb,
		local:        make(map[uint]int),
		pending:      make(map[uint]*time.Timer),
		notified:     make(map[uint]bool),
		lastSeenTTL:  presenceTTL,
		offlineGrace: presenceOfflineGrace,
		reapEvery:    presenceReapEvery,
		onOnline:     cfg.OnUserOnline,
		onOffline:    cfg.OnUserOffline,
		stopCh:       make(chan struct{}),
	}
	if cfg.LastSeenTTL > 0 {
		p.lastSeenTTL = cfg.LastSeenTTL
	}
	if cfg.OfflineGrace > 0 {
		p.offlineGrace = cfg.OfflineGrace
	}
	if cfg.ReapEvery > 0 {
		p.reapEvery = cfg.ReapEvery
	}

	if p.rdb != nil {
		go p.sweepLoop()
	}
	return p
}

// SetCallbacks replaces the online/offline transition callbacks.
func (p *PresenceTracker) SetCallbacks(onOnline, onOffline func(userID uint)) {
	p.mu.Lock()
	p.onOnline = onOnline
	p.onOffline = onOffline
	p.mu.Unlock()
}

// SetOfflineGrace adjusts the disconnect grace window.
func (p *PresenceTracker) SetOfflineGrace(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.offlineGrace = d
	p.mu.Unlock()
}

// Stop halts the sweep loop and cancels any pending offline timers.
func (p *PresenceTracker) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.pending {
			timer.Stop()
			delete(p.pending, userID)
		}
		p.mu.Unlock()
	})
}

// Register records a new local connection for the user. The first connection
// of a previously-offline user fires the online callback.
func (p *PresenceTracker) Register(ctx context.Context, userID uint) {
	wasOnline := p.IsOnline(ctx, userID)

	p.mu.Lock()
	if t, ok := p.pending[userID]; ok {
		t.Stop()
		delete(p.pending, userID)
	}
	p.local[userID]++
	p.notified[userID] = false
	p.mu.Unlock()

	p.Touch(ctx, userID)
	if !wasOnline {
		p.transitionOnline(userID)
	}
}

// Touch refreshes the user's Redis presence entry. Called on registration
// and on websocket activity (frames, pongs) so idle-but-connected users
// never expire out of the cluster view.
func (p *PresenceTracker) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := p.rdb.SAdd(ctx, presenceOnlineKey, uid).Err(); err != nil {
		slog.WarnContext(ctx, "presence touch failed", "user_id", userID, "error", err)
		return
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := p.rdb.SetEx(ctx, p.lastSeenKey(userID), now, p.lastSeenTTL).Err(); err != nil {
		slog.WarnContext(ctx, "presence last-seen write failed", "user_id", userID, "error", err)
	}
}

// Unregister records a closed local connection. When it was the user's last
// one, the offline transition is deferred by the grace window so a reconnect
// can cancel it. The timer outlives the caller, so it settles on a fresh
// background context.
func (p *PresenceTracker) Unregister(_ context.Context, userID uint) {
	p.mu.Lock()
	if n, ok := p.local[userID]; ok {
		n--
		if n > 0 {
			p.local[userID] = n
			p.mu.Unlock()
			return
		}
		delete(p.local, userID)
	}

	if t, ok := p.pending[userID]; ok {
		t.Stop()
	}
	p.pending[userID] = time.AfterFunc(p.offlineGrace, func() {
		p.settleOffline(context.Background(), userID)
	})
	p.mu.Unlock()
}

// IsOnline checks local connections first, then the cluster view in Redis.
func (p *PresenceTracker) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	localConns := p.local[userID]
	p.mu.RUnlock()
	if localConns > 0 {
		return true
	}
	if p.rdb == nil {
		return false
	}
	exists, err := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
	return err == nil && exists > 0
}

// OnlineUserIDs returns the cluster-wide online set. Members whose last-seen
// key expired are dropped from the set as a side effect; local connections
// are unioned in so a Redis outage degrades to the local view.
func (p *PresenceTracker) OnlineUserIDs(ctx context.Context) []uint {
	local := p.localIDs()
	if p.rdb == nil {
		return local
	}

	members, err := p.rdb.SMembers(ctx, presenceOnlineKey).Result()
	if err != nil {
		return local
	}

	seen := make(map[uint]struct{}, len(members)+len(local))
	ids := make([]uint, 0, len(members)+len(local))
	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
		if existsErr != nil {
			continue
		}
		if exists == 0 {
			_ = p.rdb.SRem(ctx, presenceOnlineKey, raw).Err()
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		ids = append(ids, userID)
	}
	for _, userID := range local {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		ids = append(ids, userID)
	}
	return ids
}

// sweep evicts online-set members whose last-seen key expired and emits the
// offline transition for users with no surviving local connection.
func (p *PresenceTracker) sweep(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	members, err := p.rdb.SMembers(ctx, presenceOnlineKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		userID := uint(id64)
		exists, existsErr := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
		if existsErr != nil || exists > 0 {
			continue
		}

		_ = p.rdb.SRem(ctx, presenceOnlineKey, raw).Err()

		p.mu.RLock()
		hasLocal := p.local[userID] > 0
		p.mu.RUnlock()
		if !hasLocal {
			p.transitionOffline(userID)
		}
	}
}

func (p *PresenceTracker) sweepLoop() {
	ticker := time.NewTicker(p.reapEvery)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.sweep(context.Background())
		}
	}
}

// settleOffline runs when a user's grace window expires. A reconnect on this
// instance or a presence refresh from another instance keeps the user online.
func (p *PresenceTracker) settleOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	if p.local[userID] > 0 {
		delete(p.pending, userID)
		p.mu.Unlock()
		return
	}
	delete(p.pending, userID)
	p.mu.Unlock()

	if p.rdb != nil {
		exists, err := p.rdb.Exists(ctx, p.lastSeenKey(userID)).Result()
		if err == nil && exists > 0 {
			return
		}
		_ = p.rdb.SRem(ctx, presenceOnlineKey, strconv.FormatUint(uint64(userID), 10)).Err()
	}
	p.transitionOffline(userID)
}

func (p *PresenceTracker) transitionOnline(userID uint) {
	p.mu.Lock()
	p.notified[userID] = false
	cb := p.onOnline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

// transitionOffline fires the offline callback at most once per offline
// episode; the flag resets on the next Register.
func (p *PresenceTracker) transitionOffline(userID uint) {
	p.mu.Lock()
	if p.notified[userID] {
		p.mu.Unlock()
		return
	}
	p.notified[userID] = true
	cb := p.onOffline
	p.mu.Unlock()
	if cb != nil {
		cb(userID)
	}
}

func (p *PresenceTracker) localIDs() []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]uint, 0, len(p.local))
	for userID, n := range p.local {
		if n > 0 {
			ids = append(ids, userID)
		}
	}
	return ids
}

func (p *PresenceTracker) lastSeenKey(userID uint) string {
	return presenceLastSeenPrefix + strconv.FormatUint(uint64(userID), 10)
}
