package ihash

// Stats summarizes the occupancy of a table.
type Stats struct {
	KeyWidth      int
	ProbeWidth    int
	Capacity      int
	HighWaterMark int
	Growths       int

	// Words is the number of occupied slots (distinct keys).
	Words int
	// Occurrences is the sum of all counts.
	Occurrences uint64
	// OverflowWords is the number of occupied slots outside the primary region.
	OverflowWords int
	// MaxChainLength is the longest run of links starting in the primary region.
	MaxChainLength int
}

// Stats computes occupancy statistics. It does not mutate the table.
func (t *Table) Stats() Stats {
	s := Stats{
		KeyWidth:      t.keyWidth,
		ProbeWidth:    t.probeWidth,
		Capacity:      len(t.counts),
		HighWaterMark: t.last,
		Growths:       t.growths,
	}

	for slot := range t.counts {
		if t.isEmpty(slot) {
			continue
		}
		s.Words++
		s.Occurrences += uint64(t.counts[slot])
		if slot >= t.probeWidth {
			s.OverflowWords++
		}
	}

	for slot := 0; slot < t.probeWidth && slot < len(t.next); slot++ {
		length := 0
		for p, ok := t.next[slot].Slot(); ok && p < len(t.next) && length < len(t.next); p, ok = t.next[p].Slot() {
			length++
		}
		s.MaxChainLength = max(s.MaxChainLength, length)
	}
	return s
}
