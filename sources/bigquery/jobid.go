package bigquery

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobIDPrefix starts every job id submitted by Rows.
const JobIDPrefix = "bqlab_"

// jobIDGenerator issues monotonically increasing job ids. ULIDs sort by
// submission time, so jobs from one process list in order in the console.
type jobIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newJobIDGenerator() *jobIDGenerator {
	return &jobIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *jobIDGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate job id: %w", err)
	}
	return JobIDPrefix + strings.ToLower(id.String()), nil
}

var jobIDs = newJobIDGenerator()

// NewJobID returns a fresh job id.
func NewJobID() (string, error) {
	return jobIDs.Generate()
}
