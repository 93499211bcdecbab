// Package transcript turns the encounter event stream into a readable
// combat log by subscribing to every topic on the bus.
package transcript

import (
	"context"
	"fmt"
	"io"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/rendaletaas/dndCombatSim/internal/engine"
)

// topics lists everything worth printing, in no particular order; line
// order comes from the bus's synchronous dispatch.
var topics = []string{
	engine.TopicRoundStart,
	engine.TopicTurnStart,
	engine.TopicAction,
	engine.TopicAttack,
	engine.TopicDamage,
	engine.TopicHealing,
	engine.TopicSave,
	engine.TopicContest,
	engine.TopicCondition,
	engine.TopicDeathSave,
	engine.TopicWarning,
	engine.TopicEnd,
}

// Writer prints each published combat record as one line.
type Writer struct {
	out  io.Writer
	bus  events.EventBus
	subs []string
}

// NewWriter subscribes to every combat topic on the bus and writes the
// transcript to out. Call Close when the encounter finishes.
func NewWriter(bus events.EventBus, out io.Writer) *Writer {
	w := &Writer{out: out, bus: bus}
	for _, topic := range topics {
		w.subs = append(w.subs, bus.SubscribeFunc(topic, 0, w.handle))
	}
	return w
}

func (w *Writer) handle(_ context.Context, event events.Event) error {
	rec := engine.RecordFromEvent(event)
	if rec == nil {
		return nil
	}
	_, err := fmt.Fprintln(w.out, rec.String())
	return err
}

// Close unsubscribes the writer from the bus.
func (w *Writer) Close() {
	for _, id := range w.subs {
		_ = w.bus.Unsubscribe(id)
	}
	w.subs = nil
}

// Dump writes an already-collected record slice, for callers that ran
// without a live subscription.
func Dump(out io.Writer, records []*engine.Record) error {
	for _, rec := range records {
		if _, err := fmt.Fprintln(out, rec.String()); err != nil {
			return err
		}
	}
	return nil
}
