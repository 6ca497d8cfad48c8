package main

import "sync/atomic"

// transcodeSlots bounds the number of ffmpeg processes running at once. Requests that
// find every slot taken are turned away instead of queued.
type transcodeSlots struct {
	slots  chan struct{}
	active *int64
}

func newTranscodeSlots(size int, active *int64) *transcodeSlots {
	return &transcodeSlots{slots: make(chan struct{}, size), active: active}
}

// tryAcquire takes a slot if one is free. The returned release func must be called once.
func (t *transcodeSlots) tryAcquire() (release func(), ok bool) {
	select {
	case t.slots <- struct{}{}:
		atomic.AddInt64(t.active, 1)
		return func() {
			atomic.AddInt64(t.active, -1)
			<-t.slots
		}, true
	default:
		return nil, false
	}
}

func (t *transcodeSlots) size() int {
	return cap(t.slots)
}
