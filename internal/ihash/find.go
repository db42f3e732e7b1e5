package ihash

// Find looks up every key of the flat buffer keys and writes its 1-based
// slot id to out, or 0 when the key is absent. out must have one entry per
// key. The all-zero key always yields 0.
//
// Find never mutates or grows the table.
func (t *Table) Find(keys []byte, out []uint32) error {
	if _, err := t.checkConsistency(); err != nil {
		return err
	}
	n, err := t.splitKeys(keys)
	if err != nil {
		return err
	}
	if len(out) != n {
		return configErrorf("output holds %d ids for %d keys", len(out), n)
	}

	kw := t.keyWidth
	for i := 0; i < n; i++ {
		out[i] = t.lookup(keys[i*kw : (i+1)*kw])
	}
	return nil
}

func (t *Table) lookup(key []byte) uint32 {
	if isZero(key) {
		return 0
	}

	p := t.probe(key)
	for !t.isEmpty(p) && !t.matches(p, key) {
		next, ok := t.next[p].Slot()
		if !ok {
			break
		}
		p = next
	}

	if t.matches(p, key) {
		return uint32(p + 1)
	}
	return 0
}

func isZero(key []byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
