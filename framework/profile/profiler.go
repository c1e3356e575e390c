package profile

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/km-arc/go-yii/framework/log"
)

// ErrUnmatchedEnd is returned by End when no Begin with the same token and
// category is pending.
var ErrUnmatchedEnd = errors.New("profile: end without matching begin")

// Profiler measures the time between matching Begin and End calls.
type Profiler interface {
	Begin(token string, context map[string]any)
	End(token string, context map[string]any) error
}

// Record is one measured block.
type Record struct {
	ID       uuid.UUID
	Token    string
	Category string
	Context  map[string]any
	Begin    time.Time
	End      time.Time
	Duration time.Duration
	Nesting  int
}

type pendingKey struct {
	category string
	token    string
}

// Recorder is the default Profiler. Blocks may nest; an End closes the most
// recent pending Begin with the same token and category.
type Recorder struct {
	mu       sync.Mutex
	enabled  bool
	now      func() time.Time
	pending  map[pendingKey][]*Record
	open     int
	messages []Record
	logger   log.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger makes Flush send completed records to l.
func WithLogger(l log.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder returns an enabled Recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		enabled: true,
		now:     time.Now,
		pending: make(map[pendingKey][]*Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetEnabled turns recording on or off. Disabling drops pending blocks.
func (r *Recorder) SetEnabled(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = on
	if !on {
		r.pending = make(map[pendingKey][]*Record)
		r.open = 0
	}
}

func (r *Recorder) Begin(token string, context map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}

	key := pendingKey{category: category(context), token: token}
	rec := &Record{
		ID:       uuid.New(),
		Token:    token,
		Category: key.category,
		Context:  context,
		Begin:    r.now(),
		Nesting:  r.open,
	}
	r.pending[key] = append(r.pending[key], rec)
	r.open++
}

func (r *Recorder) End(token string, context map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return nil
	}

	key := pendingKey{category: category(context), token: token}
	stack := r.pending[key]
	if len(stack) == 0 {
		return fmt.Errorf("%w: category %q token %q", ErrUnmatchedEnd, key.category, token)
	}

	rec := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(r.pending, key)
	} else {
		r.pending[key] = stack[:len(stack)-1]
	}
	r.open--

	rec.End = r.now()
	rec.Duration = rec.End.Sub(rec.Begin)
	r.messages = append(r.messages, *rec)
	return nil
}

// Messages returns the completed records in completion order.
func (r *Recorder) Messages() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.messages...)
}

// Pending returns the number of blocks begun but not ended.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

// Flush sends completed records to the logger, if any, and forgets them.
func (r *Recorder) Flush() {
	r.mu.Lock()
	msgs := r.messages
	r.messages = nil
	logger := r.logger
	r.mu.Unlock()

	if logger == nil {
		return
	}
	for _, m := range msgs {
		logger.Log(log.LevelDebug, "{token} took {duration}", map[string]any{
			"category":         "profile",
			"token":            m.Token,
			"duration":         m.Duration.String(),
			"profile_category": m.Category,
			"profile_id":       m.ID.String(),
			"nesting":          m.Nesting,
		})
	}
}

func category(context map[string]any) string {
	if c, ok := context["category"].(string); ok && c != "" {
		return c
	}
	return log.DefaultCategory
}
