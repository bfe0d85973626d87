// Package syncd provides the sync service that owns startup sequencing,
// save-side write propagation, and periodic remote pulls.
//
// The service is constructed once per process with an injected store, hub,
// and HTTP client; nothing in this package is a global. Saves go through
// the service: persist, audit-log, notify local subscribers, then push the
// change through every configured pushable bridge in the background.
// Pushes are best-effort and fire-and-forget; a failed push is logged and
// the system keeps operating local-only.
package syncd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/vcpc/helpdesk/internal/bridge"
	"github.com/vcpc/helpdesk/internal/broadcast"
	"github.com/vcpc/helpdesk/internal/model"
	"github.com/vcpc/helpdesk/internal/seed"
	"github.com/vcpc/helpdesk/internal/snapshot"
	"github.com/vcpc/helpdesk/internal/store"
)

// State names a step in the startup sequence. Transitions are
// one-directional during a single load; only PullRemote is re-entered
// later, by the timer or by ForceSync.
type State int

const (
	StateColdStart State = iota
	StateLoadLocal
	StatePullRemote
	StateSeedDefaults
	StateReady
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateColdStart:
		return "cold_start"
	case StateLoadLocal:
		return "load_local"
	case StatePullRemote:
		return "pull_remote"
	case StateSeedDefaults:
		return "seed_defaults"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Config holds service configuration.
type Config struct {
	// PullInterval is how often the background loop re-pulls remote
	// state while the service runs.
	PullInterval time.Duration

	// HTTPClient is used by all bridges. Nil selects the default
	// client; timeouts are whatever the transport defaults to.
	HTTPClient *http.Client

	// Logger for service activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PullInterval: 30 * time.Second,
		Logger:       log.New(os.Stderr, "[syncd] ", log.LstdFlags),
	}
}

// StartupOptions carries one-shot inputs consumed during ColdStart.
type StartupOptions struct {
	// SyncDataToken is a full-snapshot token from a share link. Applying
	// it overwrites local data, so Confirm must approve it first.
	SyncDataToken string

	// ConnectToken is a bridge-endpoint token from a share link. It
	// configures the sheet bridge without confirmation.
	ConnectToken string

	// Confirm approves destructive imports. A nil Confirm declines any
	// snapshot token.
	Confirm func(prompt string) bool
}

// Service owns the sync lifecycle for one device.
type Service struct {
	store  *store.Store
	hub    *broadcast.Hub
	client *http.Client
	logger *log.Logger

	pullInterval time.Duration

	mu    sync.Mutex
	state State

	pushes sync.WaitGroup
}

// New creates a sync service over the given store and hub.
func New(st *store.Store, hub *broadcast.Hub, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[syncd] ", log.LstdFlags)
	}
	if config.PullInterval <= 0 {
		config.PullInterval = 30 * time.Second
	}
	return &Service{
		store:        st,
		hub:          hub,
		client:       config.HTTPClient,
		logger:       config.Logger,
		pullInterval: config.PullInterval,
		state:        StateColdStart,
	}
}

// State returns the current startup state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Startup runs the load sequence: apply link tokens, load local state,
// pull remote if a bridge is configured, seed defaults on a never-
// initialized empty store, then declare the service ready.
//
// Running it twice without intervening writes leaves collections
// identical; defaults are never seeded twice.
func (s *Service) Startup(ctx context.Context, opts StartupOptions) error {
	s.setState(StateColdStart)

	if opts.ConnectToken != "" {
		endpoint, err := snapshot.DecodeBridgeLink(opts.ConnectToken)
		if err != nil {
			s.logger.Printf("Ignoring malformed connect token: %v", err)
		} else if err := s.SetBridgeURL(ctx, bridge.KindSheet, endpoint); err != nil {
			return err
		} else {
			s.logger.Printf("Configured sheet bridge from connect link")
		}
	}

	if opts.SyncDataToken != "" {
		if err := s.applySnapshotToken(ctx, opts.SyncDataToken, opts.Confirm); err != nil {
			s.logger.Printf("Ignoring snapshot token: %v", err)
		}
	}

	s.setState(StateLoadLocal)
	if _, err := s.store.Export(ctx); err != nil {
		return fmt.Errorf("failed to load local collections: %w", err)
	}

	if s.hasBridge(ctx) {
		s.setState(StatePullRemote)
		if ok := s.PullOnce(ctx); !ok {
			s.logger.Printf("Remote pull failed, continuing with local data")
		}
	}

	initialized, err := s.store.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		snap, err := s.store.Export(ctx)
		if err != nil {
			return err
		}
		if snap.Empty() {
			s.setState(StateSeedDefaults)
			if err := s.seedDefaults(ctx); err != nil {
				return err
			}
		} else {
			// Data arrived via pull or import before the flag was
			// ever written; mark it so we never seed over it.
			if err := s.store.SetInitialized(ctx); err != nil {
				return err
			}
		}
	}

	s.setState(StateReady)
	s.logger.Printf("Sync service ready")
	return nil
}

// applySnapshotToken decodes and imports a full-snapshot token. The import
// overwrites local collections, so it must be confirmed; a decline is not
// an error, the token is simply dropped.
func (s *Service) applySnapshotToken(ctx context.Context, token string, confirm func(string) bool) error {
	snap, err := snapshot.Decode(token)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm("Importing this snapshot overwrites local data. Continue?") {
		s.logger.Printf("Snapshot import declined, keeping local data")
		return nil
	}
	if err := s.store.Import(ctx, snap); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}
	s.hub.Notify(model.All)
	s.logger.Printf("Imported snapshot from share link")
	return nil
}

// seedDefaults writes the built-in records and marks the store
// initialized.
func (s *Service) seedDefaults(ctx context.Context) error {
	s.logger.Printf("Seeding default collections")
	if err := s.store.SaveTickets(ctx, seed.Tickets()); err != nil {
		return err
	}
	if err := s.store.SaveUsers(ctx, seed.Users()); err != nil {
		return err
	}
	if err := s.store.SaveAssets(ctx, seed.Assets()); err != nil {
		return err
	}
	if err := s.store.SetInitialized(ctx); err != nil {
		return err
	}
	s.hub.Notify(model.All)
	return nil
}

// Run blocks, re-entering PullRemote on a fixed interval until ctx is
// cancelled. The interval is independent of user activity.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.pushes.Wait()
			return ctx.Err()
		case <-ticker.C:
			if s.hasBridge(ctx) {
				s.PullOnce(ctx)
			}
		}
	}
}

// ForceSync re-runs the PullRemote step on demand. Returns true if a
// bridge was configured and the pull applied.
func (s *Service) ForceSync(ctx context.Context) bool {
	if !s.hasBridge(ctx) {
		return false
	}
	return s.PullOnce(ctx)
}

// PullOnce pulls from the first configured bridge, in sheet, rest, static
// order, and overwrites local collections with whatever keys the remote
// returned. On any failure local state and the last-sync timestamp are
// left untouched.
//
// In-flight pulls are not de-duplicated; two overlapping calls each apply
// in full and the later write wins.
func (s *Service) PullOnce(ctx context.Context) bool {
	b := s.pullBridge(ctx)
	if b == nil {
		return false
	}

	snap, err := b.Pull(ctx)
	if err != nil {
		s.logger.Printf("Pull from %s bridge failed: %v", b.Kind(), err)
		return false
	}

	if err := s.applyPull(ctx, snap); err != nil {
		s.logger.Printf("Failed to apply pulled snapshot: %v", err)
		return false
	}

	s.logger.Printf("Pulled remote state via %s bridge", b.Kind())
	return true
}

// applyPull overwrites local collections present in the snapshot and
// advances the last-sync timestamp. Absent keys leave the local
// collection untouched.
func (s *Service) applyPull(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot from bridge")
	}
	if snap.Tickets != nil {
		if err := s.store.SaveTickets(ctx, snap.Tickets); err != nil {
			return err
		}
	}
	if snap.Users != nil {
		if err := s.store.SaveUsers(ctx, snap.Users); err != nil {
			return err
		}
	}
	if snap.Assets != nil {
		if err := s.store.SaveAssets(ctx, snap.Assets); err != nil {
			return err
		}
	}
	if snap.Logs != nil {
		if err := s.store.SaveLogs(ctx, snap.Logs); err != nil {
			return err
		}
	}
	if err := s.store.SetLastSync(ctx, time.Now()); err != nil {
		return err
	}
	s.hub.Notify(model.All)
	return nil
}

// SaveTickets validates every ticket, replaces the collection, optionally
// records an audit entry, notifies subscribers, and schedules a background
// push.
func (s *Service) SaveTickets(ctx context.Context, tickets []model.Ticket, actor *model.Actor, desc string) error {
	if err := model.ValidateTickets(tickets); err != nil {
		return err
	}
	if err := s.store.SaveTickets(ctx, tickets); err != nil {
		return err
	}
	s.logAction(ctx, actor, "TICKET_UPDATE", desc, model.LogSuccess)
	s.hub.Notify(model.Tickets)
	s.pushAsync(model.Tickets)
	return nil
}

// SaveUsers validates username uniqueness before any mutation, then
// follows the same save path as tickets.
func (s *Service) SaveUsers(ctx context.Context, users []model.User, actor *model.Actor, desc string) error {
	if err := model.ValidateUsers(users); err != nil {
		return err
	}
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return err
	}
	s.logAction(ctx, actor, "USER_MANAGEMENT", desc, model.LogInfo)
	s.hub.Notify(model.Users)
	s.pushAsync(model.Users)
	return nil
}

// SaveAssets replaces the asset collection.
func (s *Service) SaveAssets(ctx context.Context, assets []model.Asset, actor *model.Actor, desc string) error {
	if err := s.store.SaveAssets(ctx, assets); err != nil {
		return err
	}
	s.logAction(ctx, actor, "ASSET_UPDATE", desc, model.LogInfo)
	s.hub.Notify(model.Assets)
	s.pushAsync(model.Assets)
	return nil
}

// logAction appends an audit entry attributing the change to actor.
// Unattributed or undescribed changes are not logged, matching the
// optional actor contract.
func (s *Service) logAction(ctx context.Context, actor *model.Actor, action, desc string, typ model.LogType) {
	if actor == nil || desc == "" {
		return
	}
	entry := model.SystemLog{
		ID:        fmt.Sprintf("log-%d", time.Now().UnixMilli()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Details:   desc,
		Type:      typ,
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		s.logger.Printf("Failed to append audit log: %v", err)
		return
	}
	s.hub.Notify(model.Logs)
}

// pushAsync schedules a best-effort push of the changed collection
// through every configured pushable bridge. The call returns before any
// network traffic happens; Flush waits for outstanding pushes to settle.
func (s *Service) pushAsync(tag model.Collection) {
	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx := context.Background()
		bridges := s.pushBridges(ctx)
		if len(bridges) == 0 {
			return
		}

		snap, err := s.store.Export(ctx)
		if err != nil {
			s.logger.Printf("Push skipped, export failed: %v", err)
			return
		}

		for _, b := range bridges {
			if err := b.Push(ctx, tag, snap); err != nil {
				s.logger.Printf("Push to %s bridge failed: %v", b.Kind(), err)
			}
		}
	}()
}

// Flush blocks until all in-flight pushes have settled. Tests use this to
// observe push completion without changing the default fire-and-forget
// behavior.
func (s *Service) Flush() {
	s.pushes.Wait()
}

// SetBridgeURL persists a bridge endpoint. Configuring one bridge does
// not disable the others; several can be configured at once.
func (s *Service) SetBridgeURL(ctx context.Context, kind bridge.Kind, url string) error {
	key, err := settingKey(kind)
	if err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, key, url); err != nil {
		return err
	}
	s.hub.Notify(model.All)
	return nil
}

// BridgeURL returns the persisted endpoint for a bridge kind, or "".
func (s *Service) BridgeURL(ctx context.Context, kind bridge.Kind) (string, error) {
	key, err := settingKey(kind)
	if err != nil {
		return "", err
	}
	return s.store.Setting(ctx, key)
}

func settingKey(kind bridge.Kind) (string, error) {
	switch kind {
	case bridge.KindSheet:
		return store.SettingSheetURL, nil
	case bridge.KindRest:
		return store.SettingRestURL, nil
	case bridge.KindStatic:
		return store.SettingStaticURL, nil
	default:
		return "", fmt.Errorf("unknown bridge kind %q", kind)
	}
}

// pullBridge returns the first configured bridge in sheet, rest, static
// order, or nil when none is configured.
func (s *Service) pullBridge(ctx context.Context) bridge.Bridge {
	for _, kind := range []bridge.Kind{bridge.KindSheet, bridge.KindRest, bridge.KindStatic} {
		url, err := s.BridgeURL(ctx, kind)
		if err != nil || url == "" {
			continue
		}
		b, err := bridge.New(kind, url, s.client)
		if err != nil {
			continue
		}
		return b
	}
	return nil
}

// pushBridges returns every configured bridge that supports push. Sheet
// and rest are attempted independently when both have URLs set.
func (s *Service) pushBridges(ctx context.Context) []bridge.Bridge {
	var bridges []bridge.Bridge
	for _, kind := range []bridge.Kind{bridge.KindSheet, bridge.KindRest} {
		url, err := s.BridgeURL(ctx, kind)
		if err != nil || url == "" {
			continue
		}
		b, err := bridge.New(kind, url, s.client)
		if err != nil {
			continue
		}
		bridges = append(bridges, b)
	}
	return bridges
}

func (s *Service) hasBridge(ctx context.Context) bool {
	return s.pullBridge(ctx) != nil
}

// FactoryReset clears every collection and setting and notifies
// subscribers so attached processes reinitialize.
func (s *Service) FactoryReset(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.hub.Notify(model.All)
	s.logger.Printf("Factory reset complete")
	return nil
}

// Status summarizes the service for the status command.
type Status struct {
	Initialized bool
	Tickets     int
	Users       int
	Assets      int
	Logs        int
	LastSync    time.Time
	SheetURL    string
	RestURL     string
	StaticURL   string
	StoreBytes  int64
}

// Status reports collection counts, bridge configuration, and store size.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	snap, err := s.store.Export(ctx)
	if err != nil {
		return nil, err
	}
	initialized, err := s.store.IsInitialized(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := s.store.LastSync(ctx)
	if err != nil {
		return nil, err
	}
	size, err := s.store.Size(ctx)
	if err != nil {
		return nil, err
	}
	sheetURL, _ := s.BridgeURL(ctx, bridge.KindSheet)
	restURL, _ := s.BridgeURL(ctx, bridge.KindRest)
	staticURL, _ := s.BridgeURL(ctx, bridge.KindStatic)

	return &Status{
		Initialized: initialized,
		Tickets:     len(snap.Tickets),
		Users:       len(snap.Users),
		Assets:      len(snap.Assets),
		Logs:        len(snap.Logs),
		LastSync:    lastSync,
		SheetURL:    sheetURL,
		RestURL:     restURL,
		StaticURL:   staticURL,
		StoreBytes:  size,
	}, nil
}
