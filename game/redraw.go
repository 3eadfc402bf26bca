package game

// requestRedraw hands a snapshot to the renderer unless a redraw is still
// in progress. A busy renderer gets at most one pending retry, which picks
// up whatever state is current when it fires.
func (m *Machine) requestRedraw() {
	if m.renderer == nil {
		return
	}
	if m.redrawBusy {
		if !m.redrawPending {
			m.redrawPending = true
			m.sched.After(m.cfg.RedrawRetry, redrawRetry{})
		}
		return
	}
	m.redrawBusy = true
	snapshot := m.snapshot()
	m.outbox = append(m.outbox, func() {
		m.renderer.Redraw(snapshot)
	})
	m.sched.After(m.cfg.RedrawDuration, redrawDone{})
}

func (m *Machine) onRedrawDone() {
	m.redrawBusy = false
}

func (m *Machine) onRedrawRetry() {
	m.redrawPending = false
	m.requestRedraw()
}
