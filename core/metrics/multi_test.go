package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/commutewatch/core/events"
)

type recordSink struct {
	cycles int
	err    error
}

func (r *recordSink) RecordCycle(events.CycleEvent) error {
	r.cycles++
	return r.err
}

type alertSink struct {
	recordSink
	alerts int
}

func (a *alertSink) RecordAlert(events.AlertEvent) error {
	a.alerts++
	return nil
}

func TestMultiSinkForwardsToAll(t *testing.T) {
	s1 := &recordSink{}
	s2 := &alertSink{}
	m := NewMultiSink(s1, s2)

	assert.NoError(t, m.RecordCycle(events.CycleEvent{Monitor: "bus"}))
	assert.NoError(t, m.RecordAlert(events.AlertEvent{Monitor: "bus"}))

	assert.Equal(t, 1, s1.cycles)
	assert.Equal(t, 1, s2.cycles)
	assert.Equal(t, 1, s2.alerts)
}

func TestMultiSinkKeepsGoingAfterError(t *testing.T) {
	boom := errors.New("write failed")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)

	err := m.RecordCycle(events.CycleEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s2.cycles)
}
