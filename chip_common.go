// chip_common.go - helpers shared by every chip driver.
//
// Grounded on _examples/original_source/src/chips/mod.rs: the reference
// source gives each driver a uniform chip_sub/chan_sub allocator and a
// default send_with_macro_env that forwards to send. Go's embedding does not
// give virtual dispatch the way Rust's default trait methods do, so the
// forwarding default is a free function each driver's SendWithMacroEnv calls
// explicitly instead of inheriting.
package main

// subAllocator hands out (chipSub, chanSub) pairs in round-robin order,
// bounded by maxChanSub channels per chip instance, and remembers whether
// any chipSub above 0 was used so FileEnd can decide whether the dual-chip
// header bit is needed.
type subAllocator struct {
	maxChanSub int
	nextChip   int
	nextChan   int
	usedDual   bool
}

func newSubAllocator(maxChanSub int) *subAllocator {
	return &subAllocator{maxChanSub: maxChanSub}
}

// Alloc assigns the next free (chipSub, chanSub) pair, advancing to a new
// chip instance once the current one's channels are exhausted.
func (a *subAllocator) Alloc() (chipSub, chanSub int) {
	chipSub, chanSub = a.nextChip, a.nextChan
	a.nextChan++
	if a.nextChan >= a.maxChanSub {
		a.nextChan = 0
		a.nextChip++
	}
	if chipSub > 0 {
		a.usedDual = true
	}
	return chipSub, chanSub
}

// Use records an explicit (chipSub, chanSub) assignment made via
// StartChannelWithInfo, so UsedDual still reflects it.
func (a *subAllocator) Use(chipSub int) {
	if chipSub > 0 {
		a.usedDual = true
	}
}

// UsedDual reports whether any channel was ever assigned to chip instance 1.
func (a *subAllocator) UsedDual() bool {
	return a.usedDual
}

// setDualChipBit ORs in the header's dual-chip-instance flag (bit 30) on the
// clock field at off, when dual is true.
func setDualChipBit(w *VgmWriter, off int, dual bool) {
	if !dual {
		return
	}
	h := w.HeaderMut()
	h.WriteU32(off, h.ReadU32(off)|0x40000000)
}

// defaultSendWithMacroEnv is the shared body for drivers whose
// SendWithMacroEnv is identical to Send (SPEC_FULL.md §4.5).
func defaultSendWithMacroEnv(c SoundChip, event *ChipEvent, channel, chipSub, chanSub int, w *VgmWriter, env *MacroEnvStorage) {
	c.Send(event, channel, chipSub, chanSub, w)
}
