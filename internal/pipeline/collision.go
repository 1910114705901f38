package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// OutputCollisionResolver tracks which job claims each output path across a
// batch run and resolves duplicates (two JobSpecs naming the same output
// file) by appending " - dupN" suffixes, so a later job never silently
// overwrites an earlier one's mux output. Safe for concurrent use.
type OutputCollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output path -> job name that owns it
	counters map[string]int    // base output path -> next dup counter
}

// NewOutputCollisionResolver returns a ready-to-use resolver.
func NewOutputCollisionResolver() *OutputCollisionResolver {
	return &OutputCollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the output path jobName should write to. If
// requestedOutput is unclaimed (or already owned by jobName, e.g. a
// re-resolve of the same job), it is returned as-is; otherwise a
// " - dupN" variant is generated and claimed instead.
func (cr *OutputCollisionResolver) Resolve(jobName, requestedOutput string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requestedOutput]
	if !exists || owner == jobName {
		cr.owners[requestedOutput] = jobName
		return requestedOutput
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requestedOutput]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == jobName {
			cr.counters[requestedOutput] = counter + 1
			cr.owners[candidate] = jobName
			return candidate
		}
		counter++
	}
}
