package core

// deferSlots is a sparse sequence of frame slots. Slot 0 runs on the next
// frame, slot 1 on the one after, and so on. A zero id marks a free slot.
type deferSlots struct {
	slots    []TaskID
	occupied int
}

// insert places id at index, or at the first free slot after it.
// Deferrals competing for the same slot are staggered one frame apart.
func (d *deferSlots) insert(index int, id TaskID) int {
	for index < len(d.slots) && d.slots[index] != 0 {
		index++
	}
	for len(d.slots) <= index {
		d.slots = append(d.slots, 0)
	}
	d.slots[index] = id
	d.occupied++
	return index
}

// shift advances one frame and returns the id due now, if any.
func (d *deferSlots) shift() (TaskID, bool) {
	if len(d.slots) == 0 {
		return 0, false
	}
	id := d.slots[0]
	d.slots[0] = 0
	d.slots = d.slots[1:]
	if id == 0 {
		return 0, false
	}
	d.occupied--
	if d.occupied == 0 {
		d.slots = nil
	}
	return id, true
}

// remove frees the slot holding id without running it.
func (d *deferSlots) remove(id TaskID) bool {
	for i, v := range d.slots {
		if v != id {
			continue
		}
		d.slots[i] = 0
		d.occupied--
		if d.occupied == 0 {
			d.slots = nil
		}
		return true
	}
	return false
}

func (d *deferSlots) len() int {
	return d.occupied
}
