package litejet

import "sync"

// dispatcher fans decoded events out to subscribers. Delivery happens on
// the reader goroutine, synchronously and in subscription order, so a
// single subscriber sees events in exact wire order. A subscriber that
// panics is isolated: the panic is reported to the logger and the
// remaining subscribers still run.
type dispatcher struct {
	mu     sync.Mutex
	subs   map[int]func(Event)
	order  []int
	nextID int
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[int]func(Event))}
}

// subscribe registers fn and returns its cancel function. Cancel is
// idempotent. A subscription added or removed during a dispatch takes
// effect from the next event.
func (d *dispatcher) subscribe(fn func(Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.order = append(d.order, id)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.subs[id]; !ok {
			return
		}
		delete(d.subs, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

func (d *dispatcher) dispatch(ev Event, log Logger) {
	d.mu.Lock()
	fns := make([]func(Event), 0, len(d.order))
	for _, id := range d.order {
		fns = append(fns, d.subs[id])
	}
	d.mu.Unlock()

	for _, fn := range fns {
		invoke(fn, ev, log)
	}
}

func invoke(fn func(Event), ev Event, log Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("subscriber panicked",
				"event", ev.String(),
				"panic", r)
		}
	}()
	fn(ev)
}
