package layout

import (
	"reflect"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/satz/engine/text"
)

// attrMap is a partition of the paragraph into ranges of equal attribute
// value. It is an ordered map from range start to value, where each
// entry covers [start, next start). The map always carries an entry at
// position 0 and never two adjacent entries with the same value, so a
// paragraph with a uniform attribute is a single entry and the reported
// ranges are maximal.
type attrMap struct {
	m *treemap.Map
	n uint32 // paragraph length in code units
}

func newAttrMap(n uint32, def interface{}) *attrMap {
	m := treemap.NewWith(utils.UInt32Comparator)
	m.Put(uint32(0), def)
	return &attrMap{m: m, n: n}
}

// set overwrites [r.Start, r.End()) with v. Ranges straddling the
// paragraph end are clamped, zero-length ranges are a no-op. Returns
// whether the partition changed.
func (am *attrMap) set(r text.Range, v interface{}) bool {
	r = r.Clamp(am.n)
	if r.IsEmpty() {
		return false
	}
	if r.Start == 0 && r.End() >= am.n {
		if am.m.Size() == 1 {
			if _, old := am.m.Min(); sameValue(old, v) {
				return false
			}
		}
		am.m.Clear()
		am.m.Put(uint32(0), v)
		return true
	}
	end := r.End()
	after, _ := am.at(end) // value that continues past the write
	var doomed []uint32
	it := am.m.Iterator()
	for it.Next() {
		k := it.Key().(uint32)
		if k >= end {
			break
		}
		if k >= r.Start {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		am.m.Remove(k)
	}
	am.m.Put(r.Start, v)
	if end < am.n {
		am.m.Put(end, after)
	}
	am.coalesce(r.Start)
	if end < am.n {
		am.coalesce(end)
	}
	return true
}

// coalesce removes the entry at k if it repeats its predecessor's value.
func (am *attrMap) coalesce(k uint32) {
	if k == 0 {
		return
	}
	v, ok := am.m.Get(k)
	if !ok {
		return
	}
	if _, prev := am.m.Floor(k - 1); sameValue(prev, v) {
		am.m.Remove(k)
	}
}

// at returns the value covering pos and the start of its entry. pos is
// clamped to the partition.
func (am *attrMap) at(pos uint32) (interface{}, uint32) {
	if am.n > 0 && pos >= am.n {
		pos = am.n - 1
	}
	k, v := am.m.Floor(pos)
	if k == nil { // cannot happen, entry at 0 is invariant
		_, v = am.m.Min()
		return v, 0
	}
	return v, k.(uint32)
}

// get returns the value at pos together with the maximal range over
// which it holds.
func (am *attrMap) get(pos uint32) (interface{}, text.Range) {
	v, start := am.at(pos)
	end := am.n
	if k, _ := am.m.Ceiling(start + 1); k != nil {
		end = k.(uint32)
	}
	return v, text.MakeRange(start, end-start)
}

// boundaries appends the entry starts of the partition to dst.
func (am *attrMap) boundaries(dst []uint32) []uint32 {
	it := am.m.Iterator()
	for it.Next() {
		dst = append(dst, it.Key().(uint32))
	}
	return dst
}

// uniform is true if a single value covers the whole paragraph.
func (am *attrMap) uniform() bool {
	return am.m.Size() == 1
}

// sameValue compares attribute values without panicking on values which
// do not support ==, such as client effects holding a func. Those never
// coalesce.
func sameValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
