package replay

import (
	"fmt"
	"log"
	"sync"
)

// Replay is the recorded-session collaborator. The engine forwards
// timeline events verbatim and never interprets replay internals.
type Replay interface {
	Update()
	FixedUpdate()
	TimeUpdate(time float64, scrubbing bool)
	PlayPause(play bool)
	Stop(time float64)
}

// Nop ignores every call.
type Nop struct{}

func (Nop) Update()                  {}
func (Nop) FixedUpdate()             {}
func (Nop) TimeUpdate(float64, bool) {}
func (Nop) PlayPause(bool)           {}
func (Nop) Stop(float64)             {}

// Call is one forwarded event.
type Call struct {
	Name      string
	Time      float64
	Scrubbing bool
	Play      bool
}

func (c Call) String() string {
	switch c.Name {
	case "time":
		return fmt.Sprintf("time(%.3f, scrub=%v)", c.Time, c.Scrubbing)
	case "play":
		return fmt.Sprintf("play(%v)", c.Play)
	case "stop":
		return fmt.Sprintf("stop(%.3f)", c.Time)
	default:
		return c.Name
	}
}

// Recorder keeps every forwarded event. Update/FixedUpdate are counted
// rather than recorded since they fire every frame.
type Recorder struct {
	mu           sync.Mutex
	calls        []Call
	updates      int
	fixedUpdates int
	logger       *log.Logger
}

// NewRecorder returns a Recorder; a non-nil logger also prints each
// event.
func NewRecorder(logger *log.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Update() {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
}

func (r *Recorder) FixedUpdate() {
	r.mu.Lock()
	r.fixedUpdates++
	r.mu.Unlock()
}

func (r *Recorder) TimeUpdate(time float64, scrubbing bool) {
	r.record(Call{Name: "time", Time: time, Scrubbing: scrubbing})
}

func (r *Recorder) PlayPause(play bool) {
	r.record(Call{Name: "play", Play: play})
}

func (r *Recorder) Stop(time float64) {
	r.record(Call{Name: "stop", Time: time})
}

// Calls returns a copy of the recorded events.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Counts returns how many Update and FixedUpdate calls were seen.
func (r *Recorder) Counts() (updates, fixedUpdates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates, r.fixedUpdates
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Printf("[replay] %s", c)
	}
}
