package engine

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"
)

// Event topics published on the encounter bus. Subscribers (transcript
// writer, reaction handling, tests) filter by topic.
const (
	TopicRoundStart = "combat.round_start"
	TopicTurnStart  = "combat.turn_start"
	TopicAction     = "combat.action"
	TopicAttack     = "combat.attack"
	TopicDamage     = "combat.damage"
	TopicHealing    = "combat.healing"
	TopicSave       = "combat.save"
	TopicContest    = "combat.contest"
	TopicCondition  = "combat.condition"
	TopicDeathSave  = "combat.death_save"
	TopicReachExit  = "combat.reach_exit"
	TopicWarning    = "combat.warning"
	TopicEnd        = "combat.end"
)

// recordKey is the event context key carrying the *Record payload.
const recordKey = "record"

// Record is one entry of the encounter's event stream. The full ordered
// slice is the machine-readable transcript of the fight.
type Record struct {
	Round  int
	Topic  string
	Actor  string
	Target string
	Action string
	// Value is the topic's primary quantity: damage dealt, healing done,
	// roll total, rounds remaining.
	Value int
	// Detail is a short human-readable summary.
	Detail string
}

// String renders the record as one transcript line.
func (r *Record) String() string {
	return fmt.Sprintf("[round %d] %s", r.Round, r.Detail)
}

// RecordFromEvent extracts the Record attached to a bus event, or nil.
func RecordFromEvent(e events.Event) *Record {
	v, ok := e.Context().Get(recordKey)
	if !ok {
		return nil
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil
	}
	return rec
}

// publish appends the record to the encounter stream and pushes it onto
// the event bus. Bus handlers run synchronously, so reactions triggered
// by an event finish before publish returns.
func (e *Encounter) publish(ctx context.Context, topic string, source, target core.Entity, rec *Record) error {
	rec.Round = e.round
	rec.Topic = topic
	if source != nil {
		rec.Actor = source.GetID()
	}
	if target != nil {
		rec.Target = target.GetID()
	}
	e.records = append(e.records, rec)

	event := events.NewGameEvent(topic, source, target)
	event.Context().Set(recordKey, rec)
	return e.bus.Publish(ctx, event)
}
