// internal/analyzer/ring.go
package analyzer

// ring is a fixed-capacity sample buffer. Pushing past capacity evicts the
// oldest entry. Indexing is oldest-first.
type ring struct {
	buf   []Sample
	head  int
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Sample, capacity)}
}

func (r *ring) push(s Sample) {
	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = s
	if r.count < len(r.buf) {
		r.count++
		return
	}
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) len() int { return r.count }

// at returns the i-th sample, 0 being the oldest. Caller guarantees i < len.
func (r *ring) at(i int) Sample {
	return r.buf[(r.head+i)%len(r.buf)]
}

// newest returns the most recent sample, if any.
func (r *ring) newest() (Sample, bool) {
	if r.count == 0 {
		return Sample{}, false
	}
	return r.at(r.count - 1), true
}
