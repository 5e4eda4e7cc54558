package heartbeat

import (
	"errors"
	"sync"
	"time"

	"github.com/tliron/kutil/logging"
)

// Common errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Subscriber receives every emitted heartbeat. Delivery is synchronous
// and in registration order; a failing subscriber never blocks the rest.
type Subscriber interface {
	HandleHeartbeat(hb Heartbeat) error
}

// BranchResolver reports the active version-control branch for a working
// directory. ok is false when no branch could be determined; that is not
// an error.
type BranchResolver interface {
	Resolve(dir string) (branch string, ok bool)
}

// Config configures a Dispatcher.
type Config struct {
	// Project is the project name attached to every heartbeat.
	Project string

	// ProjectRoot is the directory branch resolution runs against.
	ProjectRoot string

	// Plugin identifies the host editor in the heartbeat.
	Plugin string

	// Language is the fixed language tag for this editing environment.
	Language string

	// Cooldown is the minimum time between two heartbeats for the same
	// entity. Default: 2 minutes.
	Cooldown time.Duration

	// Branch resolves the branch annotation. Nil disables it.
	Branch BranchResolver

	// Logger for dispatch diagnostics. Default: the "godotime" logger.
	Logger logging.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Cooldown < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultCooldown is the wakatime convention of one heartbeat per file
// per two minutes.
const DefaultCooldown = 2 * time.Minute

// Dispatcher admits activity through a per-entity cooldown gate, builds
// heartbeats for admitted activity and publishes them to subscribers.
// Multiple independent dispatchers can coexist; each owns its own
// cooldown state. Safe for concurrent use.
type Dispatcher struct {
	project     string
	projectRoot string
	plugin      string
	language    string
	cooldown    time.Duration
	branch      BranchResolver
	log         logging.Logger

	mu        sync.Mutex
	lastEvent map[string]time.Time
	subs      []Subscriber

	nowFunc func() time.Time // for testing
}

// NewDispatcher creates a dispatcher with an empty cooldown record.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}

	log := cfg.Logger
	if log == nil {
		log = logging.GetLogger("godotime")
	}

	return &Dispatcher{
		project:     cfg.Project,
		projectRoot: cfg.ProjectRoot,
		plugin:      cfg.Plugin,
		language:    cfg.Language,
		cooldown:    cooldown,
		branch:      cfg.Branch,
		log:         log,
		lastEvent:   make(map[string]time.Time),
		nowFunc:     time.Now,
	}, nil
}

// Subscribe registers a subscriber. Heartbeats are delivered in
// registration order.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

// Notify runs one activity notification through the cooldown gate and,
// if admitted, publishes a heartbeat. Reports whether a heartbeat was
// emitted. Activity with an empty entity is dropped.
func (d *Dispatcher) Notify(act Activity) bool {
	if act.Entity == "" {
		d.log.Warningf("dropping activity with empty entity")
		return false
	}

	d.mu.Lock()
	now := d.nowFunc()
	if !d.admit(act.Entity, now) {
		d.mu.Unlock()
		return false
	}
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	hb := d.build(act, now)
	for _, s := range subs {
		d.deliver(s, hb)
	}
	return true
}

// admit records now against the entity if no record exists or the
// cooldown window has elapsed. Caller holds d.mu.
func (d *Dispatcher) admit(entity string, now time.Time) bool {
	if last, exists := d.lastEvent[entity]; exists && now.Sub(last) < d.cooldown {
		return false
	}
	d.lastEvent[entity] = now
	return true
}

func (d *Dispatcher) build(act Activity, now time.Time) Heartbeat {
	hb := Heartbeat{
		Entity:     act.Entity,
		EntityType: EntityTypeFile,
		Category:   CategoryCoding,
		Time:       unixTime(now),
		Plugin:     d.plugin,
		Project:    d.project,
		Language:   d.language,
		LineNumber: act.LineNumber,
		CursorPos:  act.CursorPos,
		Lines:      act.Lines,
		IsWrite:    act.IsWrite,
		IsUnsaved:  act.IsUnsaved,
	}
	if d.branch != nil {
		if branch, ok := d.branch.Resolve(d.projectRoot); ok {
			hb.Branch = branch
		}
	}
	return hb
}

// deliver isolates one subscriber: errors and panics are logged and the
// remaining subscribers still receive the heartbeat.
func (d *Dispatcher) deliver(s Subscriber, hb Heartbeat) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("subscriber panic for %s: %v", hb.Entity, r)
		}
	}()

	if err := s.HandleHeartbeat(hb); err != nil {
		d.log.Warningf("subscriber failed for %s: %s", hb.Entity, err.Error())
	}
}
