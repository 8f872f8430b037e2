package pluginsuperpoke

import (
	"math/rand/v2"
	"sync"
	"time"
)

// picker draws entries in proportion to their weight. The rng is not goroutine-safe, hence the lock.
type picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newPicker(rng *rand.Rand) *picker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &picker{rng: rng}
}

// Pick returns one entry, or false when the list is empty.
func (p *picker) Pick(entries []CommandEntry) (CommandEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pick(p.rng, entries)
}

func pick(rng *rand.Rand, entries []CommandEntry) (CommandEntry, bool) {
	total := 0
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	if total == 0 {
		return CommandEntry{}, false
	}
	n := rng.IntN(total)
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		if n < e.Weight {
			return e, true
		}
		n -= e.Weight
	}
	return CommandEntry{}, false
}
