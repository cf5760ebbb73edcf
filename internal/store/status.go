// Package store holds the application state containers: auth, cart,
// products and orders. Each container is an explicit object constructed
// once at process start and passed to its consumers; mutation happens
// only through its methods, under the container's own lock.
package store

// Status tracks the lifecycle of a container's most recent remote sync.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// syncState is embedded by containers that synchronize with a remote API.
// The generation counter fences overlapping requests: begin bumps it and
// a settled response may only be applied while its generation is still
// current. A stale response leaves state, status and error untouched.
type syncState struct {
	status Status
	err    string
	gen    uint64
}

func newSyncState() syncState {
	return syncState{status: StatusIdle}
}

// begin transitions to loading and returns the generation owned by the
// new request. Callers must hold the container lock.
func (s *syncState) begin() uint64 {
	s.gen++
	s.status = StatusLoading
	s.err = ""
	return s.gen
}

// current reports whether gen still owns the container.
func (s *syncState) current(gen uint64) bool {
	return s.gen == gen
}

func (s *syncState) succeed() {
	s.status = StatusSucceeded
	s.err = ""
}

func (s *syncState) fail(err error) {
	s.status = StatusFailed
	if err != nil {
		s.err = err.Error()
	}
}

func (s *syncState) reset() {
	s.status = StatusIdle
	s.err = ""
}

// Credentials exposes the current session to the containers that attach
// it to remote calls.
type Credentials interface {
	Token() string
	UserID() string
}
