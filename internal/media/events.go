package media

type eventKind int

const (
	evMetadata eventKind = iota
	evPlaying
	evPaused
	evTimeUpdate
	evEnded
	evError
)

type event struct {
	kind  eventKind
	src   string
	value float64
	err   error
}

// push queues ev for the dispatcher. It never blocks, so it is safe to call while a listener
// is calling into the element.
func (e *Element) push(ev event) {
	e.qmu.Lock()
	e.queue = append(e.queue, ev)
	e.qmu.Unlock()

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *Element) drain() []event {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	q := e.queue
	e.queue = nil
	return q
}

func (e *Element) dispatch() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			return
		case <-e.notify:
			for _, ev := range e.drain() {
				e.deliver(ev)
			}
		}
	}
}

func (e *Element) deliver(ev event) {
	e.mu.Lock()
	l := e.listener
	e.mu.Unlock()
	if l == nil {
		return
	}

	switch ev.kind {
	case evMetadata:
		l.HandleMetadata(ev.src, ev.value)
	case evPlaying:
		l.HandlePlaying(ev.src)
	case evPaused:
		l.HandlePaused(ev.src)
	case evTimeUpdate:
		l.HandleTimeUpdate(ev.src, ev.value)
	case evEnded:
		l.HandleEnded(ev.src)
	case evError:
		l.HandleError(ev.src, ev.err)
	}
}
