package engine

import (
	"context"
	"fmt"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// applyCondition puts a condition on the target, honoring condition
// immunity and pulling in linked conditions. Reapplying an active
// condition keeps the longer remaining duration.
func (e *Encounter) applyCondition(ctx context.Context, target *entities.Combatant, cond *entities.Condition) error {
	if target.ImmuneToCondition(cond.Name) {
		rec := &Record{
			Action: cond.Name,
			Detail: fmt.Sprintf("%s is immune to %s", target.Name, cond.Name),
		}
		return e.publish(ctx, TopicCondition, target, nil, rec)
	}

	if existing := target.FindCondition(cond.Name); existing != nil {
		if cond.Rounds == entities.IndefiniteRounds || (existing.Rounds != entities.IndefiniteRounds && cond.Rounds > existing.Rounds) {
			existing.Rounds = cond.Rounds
			existing.Source = cond.Source
			existing.Concentration = cond.Concentration
		}
	} else {
		target.Conditions = append(target.Conditions, cond)
	}

	for _, linked := range entities.LinkedConditions(cond.Name) {
		if target.HasCondition(linked) {
			continue
		}
		err := e.applyCondition(ctx, target, &entities.Condition{
			Name:   linked,
			Rounds: entities.IndefiniteRounds,
			Source: cond.Source,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// removeCondition drops the named condition and any linked conditions no
// other active condition still sustains.
func (e *Encounter) removeCondition(target *entities.Combatant, name string) {
	idx := -1
	for i, cond := range target.Conditions {
		if cond.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	linked := entities.LinkedConditions(name)
	target.Conditions = append(target.Conditions[:idx], target.Conditions[idx+1:]...)

	for _, l := range linked {
		if !e.sustained(target, l) {
			e.removeCondition(target, l)
		}
	}
}

// sustained reports whether any remaining condition links to name.
func (e *Encounter) sustained(target *entities.Combatant, name string) bool {
	for _, cond := range target.Conditions {
		for _, l := range entities.LinkedConditions(cond.Name) {
			if l == name {
				return true
			}
		}
	}
	return false
}

// reviveFromZero clears the downed state after healing brings a
// combatant above zero HP.
func (e *Encounter) reviveFromZero(target *entities.Combatant) {
	e.removeCondition(target, entities.ConditionDying)
	e.removeCondition(target, entities.ConditionStable)
	e.removeCondition(target, entities.ConditionUnconscious)
	target.DeathSaves.Reset()
}

// kill marks the combatant dead and drops it from the initiative order.
func (e *Encounter) kill(ctx context.Context, target *entities.Combatant) error {
	e.removeCondition(target, entities.ConditionDying)
	e.removeCondition(target, entities.ConditionStable)
	target.Conditions = append(target.Conditions, &entities.Condition{
		Name:   entities.ConditionDead,
		Rounds: entities.IndefiniteRounds,
	})
	e.removeFromOrder(target)

	rec := &Record{
		Detail: fmt.Sprintf("%s dies", target.Name),
	}
	return e.publish(ctx, TopicCondition, target, nil, rec)
}

func (e *Encounter) removeFromOrder(target *entities.Combatant) {
	for i, c := range e.order {
		if c == target {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}

// startOfTurn runs the actor's start-of-turn bookkeeping: timed
// condition countdown and expiry, ongoing damage, and the end of
// until-next-turn effects like dodging and disengaging.
func (e *Encounter) startOfTurn(ctx context.Context, actor *entities.Combatant) error {
	e.removeCondition(actor, entities.ConditionDodging)
	e.removeCondition(actor, entities.ConditionDisengaging)

	// Snapshot: ongoing damage can add or remove conditions mid-loop.
	active := append([]*entities.Condition(nil), actor.Conditions...)

	var expired []string
	for _, cond := range active {
		if !cond.Damage.IsZero() {
			amount, err := e.rollDamageComponent(entities.DamageComponent{Dice: cond.Damage}, false)
			if err != nil {
				return err
			}
			source := actor
			if src, ok := e.byName[cond.Source]; ok {
				source = src
			}
			byType := map[string]int{cond.DamageType: amount}
			if _, err := e.dealDamage(ctx, source, actor, byType, false); err != nil {
				return err
			}
			if actor.IsDead() {
				return nil
			}
		}
		if cond.Timed() {
			cond.Rounds--
			if cond.Rounds <= 0 {
				expired = append(expired, cond.Name)
			}
		}
	}

	for _, name := range expired {
		e.removeCondition(actor, name)
		rec := &Record{
			Action: name,
			Detail: fmt.Sprintf("%s is no longer %s", actor.Name, name),
		}
		if err := e.publish(ctx, TopicCondition, actor, nil, rec); err != nil {
			return err
		}
	}
	return nil
}

// rollDeathSave handles the dying combatant's replacement turn: a flat
// d20 against fate.
func (e *Encounter) rollDeathSave(ctx context.Context, actor *entities.Combatant) error {
	natural, err := e.roller.Roll(20)
	if err != nil {
		return errors.Wrap(err, "death save roll failed")
	}

	var detail string
	switch {
	case natural == 20:
		actor.ApplyHealing(1)
		e.reviveFromZero(actor)
		detail = fmt.Sprintf("%s rolls a natural 20 on a death save and regains consciousness with 1 HP", actor.Name)
	case natural == 1:
		actor.DeathSaves.Failures += 2
		detail = fmt.Sprintf("%s rolls a natural 1 on a death save: two failures (%d total)", actor.Name, actor.DeathSaves.Failures)
	case natural >= 10:
		actor.DeathSaves.Successes++
		detail = fmt.Sprintf("%s succeeds on a death save (%d of 3)", actor.Name, actor.DeathSaves.Successes)
	default:
		actor.DeathSaves.Failures++
		detail = fmt.Sprintf("%s fails a death save (%d of 3)", actor.Name, actor.DeathSaves.Failures)
	}

	rec := &Record{
		Value:  natural,
		Detail: detail,
	}
	if err := e.publish(ctx, TopicDeathSave, actor, nil, rec); err != nil {
		return err
	}

	if actor.DeathSaves.Failures >= 3 {
		return e.kill(ctx, actor)
	}
	if actor.DeathSaves.Successes >= 3 {
		e.removeCondition(actor, entities.ConditionDying)
		actor.DeathSaves.Reset()
		if err := e.applyCondition(ctx, actor, &entities.Condition{
			Name:   entities.ConditionStable,
			Rounds: entities.IndefiniteRounds,
		}); err != nil {
			return err
		}
		// Stable combatants stay unconscious at zero HP.
		if err := e.applyCondition(ctx, actor, &entities.Condition{
			Name:   entities.ConditionUnconscious,
			Rounds: entities.IndefiniteRounds,
		}); err != nil {
			return err
		}
		rec := &Record{
			Detail: fmt.Sprintf("%s is stable", actor.Name),
		}
		return e.publish(ctx, TopicCondition, actor, nil, rec)
	}
	return nil
}

// resolveMovement spends the actor's movement budget. Leaving melee
// reach of standing hostiles provokes opportunity attacks unless the
// actor disengaged first; the reach-exit event triggers them through
// the bus before movement completes.
func (e *Encounter) resolveMovement(ctx context.Context, actor *entities.Combatant, def *entities.ActionDef) error {
	distance := actor.Economy.Speed
	actor.Economy.Speed = 0

	rec := &Record{
		Action: def.Name,
		Value:  distance,
		Detail: fmt.Sprintf("%s moves %d feet", actor.Name, distance),
	}
	if err := e.publish(ctx, TopicAction, actor, nil, rec); err != nil {
		return err
	}

	if actor.HasCondition(entities.ConditionDisengaging) || actor.HasCondition(entities.ConditionGrappled) {
		return nil
	}
	if len(e.hostilesOf(actor)) == 0 {
		return nil
	}

	exit := &Record{
		Action: def.Name,
		Detail: fmt.Sprintf("%s leaves melee reach", actor.Name),
	}
	return e.publish(ctx, TopicReachExit, actor, nil, exit)
}

// resolveAuto applies a fixed-effect action. The category names the
// effect; unknown categories record the action with no effect.
func (e *Encounter) resolveAuto(ctx context.Context, actor *entities.Combatant, def *entities.ActionDef) error {
	var detail string
	switch def.Category {
	case "dodge":
		if err := e.applyCondition(ctx, actor, &entities.Condition{
			Name:   entities.ConditionDodging,
			Rounds: entities.IndefiniteRounds,
			Source: actor.Name,
		}); err != nil {
			return err
		}
		detail = fmt.Sprintf("%s takes the dodge action", actor.Name)
	case "dash":
		actor.Economy.Speed += actor.Speed
		detail = fmt.Sprintf("%s dashes (%d feet of movement)", actor.Name, actor.Economy.Speed)
	case "disengage":
		if err := e.applyCondition(ctx, actor, &entities.Condition{
			Name:   entities.ConditionDisengaging,
			Rounds: entities.IndefiniteRounds,
			Source: actor.Name,
		}); err != nil {
			return err
		}
		detail = fmt.Sprintf("%s disengages", actor.Name)
	case "flee":
		if err := e.applyCondition(ctx, actor, &entities.Condition{
			Name:   entities.ConditionFled,
			Rounds: entities.IndefiniteRounds,
		}); err != nil {
			return err
		}
		e.removeFromOrder(actor)
		detail = fmt.Sprintf("%s flees the fight", actor.Name)
	case "refill":
		// Recover every named resource to its maximum.
		for name, maxVal := range actor.ResourcesMax {
			actor.Resources[name] = maxVal
		}
		detail = fmt.Sprintf("%s recovers expended resources", actor.Name)
	default:
		detail = fmt.Sprintf("%s uses %s (no effect)", actor.Name, def.Name)
	}

	rec := &Record{
		Action: def.Name,
		Detail: detail,
	}
	return e.publish(ctx, TopicAction, actor, nil, rec)
}

// resolveSpecial handles the targeted special actions. Stabilize ends a
// dying ally's death saves; everything else is a data-only action
// recorded with no mechanical effect.
func (e *Encounter) resolveSpecial(ctx context.Context, actor, target *entities.Combatant, def *entities.ActionDef) error {
	if def.Category == "stabilize" && target.IsDying() {
		e.removeCondition(target, entities.ConditionDying)
		target.DeathSaves.Reset()
		if err := e.applyCondition(ctx, target, &entities.Condition{
			Name:   entities.ConditionStable,
			Rounds: entities.IndefiniteRounds,
			Source: actor.Name,
		}); err != nil {
			return err
		}
		if err := e.applyCondition(ctx, target, &entities.Condition{
			Name:   entities.ConditionUnconscious,
			Rounds: entities.IndefiniteRounds,
		}); err != nil {
			return err
		}
		rec := &Record{
			Action: def.Name,
			Detail: fmt.Sprintf("%s stabilizes %s", actor.Name, target.Name),
		}
		return e.publish(ctx, TopicAction, actor, target, rec)
	}

	rec := &Record{
		Action: def.Name,
		Detail: fmt.Sprintf("%s uses %s on %s (no effect)", actor.Name, def.Name, target.Name),
	}
	return e.publish(ctx, TopicAction, actor, target, rec)
}

// payCost spends the action's named resource, if any. A missing charge
// at this point is an engine defect: the selector filters unaffordable
// actions.
func (e *Encounter) payCost(actor *entities.Combatant, def *entities.ActionDef) error {
	if def.Resource == "" {
		return nil
	}
	if actor.Resources[def.Resource] <= 0 {
		return errors.Internalf("%s used %s with no %s remaining", actor.Name, def.Name, def.Resource)
	}
	actor.Resources[def.Resource]--
	return nil
}
