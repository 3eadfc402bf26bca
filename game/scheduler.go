package game

import "time"

// Scheduler delivers ev back to the machine once d has elapsed.
type Scheduler interface {
	After(d time.Duration, ev Event)
}

type timerScheduler struct {
	post func(ev Event)
}

func (s timerScheduler) After(d time.Duration, ev Event) {
	time.AfterFunc(d, func() {
		s.post(ev)
	})
}
