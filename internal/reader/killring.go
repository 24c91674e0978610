package reader

// DefaultKillRingSize bounds the ring when no size is configured.
const DefaultKillRingSize = 60

// KillRing holds killed spans, most recent last.
type KillRing struct {
	entries [][]rune
	max     int
}

func NewKillRing(max int) *KillRing {
	if max <= 0 {
		max = DefaultKillRingSize
	}
	return &KillRing{max: max}
}

func (k *KillRing) Len() int {
	return len(k.entries)
}

// Last returns the most recent entry, or nil for an empty ring.
func (k *KillRing) Last() []rune {
	if len(k.entries) == 0 {
		return nil
	}
	return k.entries[len(k.entries)-1]
}

// Entries returns the ring contents as strings, oldest first.
func (k *KillRing) Entries() []string {
	out := make([]string, len(k.entries))
	for i, e := range k.entries {
		out[i] = string(e)
	}
	return out
}

func (k *KillRing) push(text []rune) {
	k.entries = append(k.entries, text)
	if over := len(k.entries) - k.max; over > 0 {
		k.entries = append(k.entries[:0], k.entries[over:]...)
	}
}

func (k *KillRing) prependLast(text []rune) {
	last := k.entries[len(k.entries)-1]
	k.entries[len(k.entries)-1] = append(append([]rune(nil), text...), last...)
}

func (k *KillRing) appendLast(text []rune) {
	last := k.entries[len(k.entries)-1]
	k.entries[len(k.entries)-1] = append(append([]rune(nil), last...), text...)
}

// rotate moves the last entry to the front.
func (k *KillRing) rotate() {
	n := len(k.entries)
	if n < 2 {
		return
	}
	last := k.entries[n-1]
	copy(k.entries[1:], k.entries[:n-1])
	k.entries[0] = last
}

// killRange removes buffer[start:end] into the kill ring. Consecutive kills
// extend the newest entry: backward kills prepend, forward kills append.
func (r *Reader) killRange(start, end int) {
	if start == end {
		return
	}
	text := r.deleteRange(start, end)
	if (r.lastCommand == CategoryKill || r.killed) && r.killRing.Len() > 0 {
		if start < r.pos {
			r.killRing.prependLast(text)
		} else {
			r.killRing.appendLast(text)
		}
	} else {
		r.killRing.push(text)
	}
	r.killed = true
	r.pos = start
	r.dirty = true
}
