package notify

import (
	"strconv"
	"sync"

	"github.com/go-faster/errors"
)

// maxID is the wrap boundary for both id spaces (int32 max). Allocation
// wraps back to 1 rather than overflowing into negative values, since
// notification/group ids are compared and sorted as plain integers.
const maxID int32 = 1<<31 - 1

// KV is the durable key-value collaborator the allocator persists its
// counters through. It stores nothing else for this engine — see the
// persistence-boundary decision in DESIGN.md.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Allocator hands out monotonically increasing ids that wrap at maxID,
// durably persisting the high-water mark so a restart never reissues an id
// already seen by a caller. One Allocator instance owns exactly one KV key.
type Allocator struct {
	mu      sync.Mutex
	kv      KV
	key     string
	current int32
}

// NewAllocator loads the last persisted value for key (defaulting to 0, so
// the first Next() call returns 1) and returns a ready-to-use Allocator.
func NewAllocator(kv KV, key string) (*Allocator, error) {
	if kv == nil {
		return nil, errors.New("notify: allocator requires a non-nil KV")
	}
	raw, found, err := kv.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "notify: load allocator counter")
	}
	var current int32
	if found {
		v, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "notify: decode allocator counter %q", key)
		}
		current = int32(v)
	}
	return &Allocator{kv: kv, key: key, current: current}, nil
}

// Next returns the next id in sequence and persists the new high-water mark
// before returning it, so a crash between increment and persist is
// impossible to observe from outside.
func (a *Allocator) Next() (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.current + 1
	if next > maxID || next <= 0 {
		next = 1
	}
	if err := a.kv.Set(a.key, strconv.FormatInt(int64(next), 10)); err != nil {
		return 0, errors.Wrapf(err, "notify: persist allocator counter %q", a.key)
	}
	a.current = next
	return next, nil
}

// Keys used to persist the two counters this engine owns.
const (
	NotificationIDCounterKey = "notify/next_notification_id"
	GroupIDCounterKey        = "notify/next_group_id"
)
