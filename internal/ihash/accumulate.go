package ihash

import "errors"

// Accumulate inserts every key of the flat buffer keys (KeyWidth bytes per
// key) or increments its count when already present, growing the table when
// an overflow chain needs a slot and none is free.
//
// It returns the number of keys committed. On *AllocationError the keys
// before the failing one stay committed and the table is otherwise
// unchanged. On *ConfigError nothing was committed.
//
// Accumulate does not trim; call Trim before handing the table to readers.
func (t *Table) Accumulate(keys []byte) (int, error) {
	last, err := t.checkConsistency()
	if err != nil {
		return 0, err
	}
	n, err := t.splitKeys(keys)
	if err != nil {
		return 0, err
	}
	t.last = last

	kw := t.keyWidth
	for i := 0; i < n; i++ {
		key := keys[i*kw : (i+1)*kw]

		p, err := t.resolve(key)
		if err != nil {
			var ae *AllocationError
			if errors.As(err, &ae) {
				ae.Committed = i
			}
			return i, err
		}

		t.counts[p]++
		copy(t.keyAt(p), key)
	}
	return n, nil
}

// resolve returns the slot key belongs to, appending a chain slot when the
// key is not present and its chain is exhausted.
func (t *Table) resolve(key []byte) (int, error) {
	p := t.probe(key)

	for !t.isEmpty(p) && !t.matches(p, key) {
		next, ok := t.next[p].Slot()
		if ok && next >= len(t.counts) {
			return 0, configErrorf("chain pointer %d is past table size %d", next+1, len(t.counts))
		}
		if !ok {
			if t.last >= len(t.counts) {
				if err := t.grow(); err != nil {
					return 0, err
				}
			}
			next = t.last
			t.next[p] = LinkTo(next)
			t.last++
		}
		p = next
	}
	return p, nil
}
