package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// slotOrder is the sequence each turn walks through. Reactions are not
// in the list: they trigger off other combatants' turns.
var slotOrder = []entities.Economy{
	entities.EconomyFree,
	entities.EconomyMovement,
	entities.EconomyRegular,
	entities.EconomyBonus,
}

// Run plays the encounter to completion: initiative, rounds of turns,
// and a decisive result or a stalemate at the round cap. A non-nil error
// means the engine hit a structural impossibility, not a combat outcome.
func (e *Encounter) Run(ctx context.Context) (*Outcome, error) {
	if err := e.rollInitiative(ctx); err != nil {
		return nil, err
	}

	reactionSub := e.bus.SubscribeFunc(TopicReachExit, 0, events.HandlerFunc(e.onReachExit))
	defer func() {
		_ = e.bus.Unsubscribe(reactionSub)
	}()

	for e.round = 1; e.round <= e.maxRounds; e.round++ {
		// The fight can already be over before anyone acts, e.g. when
		// every remaining combatant has fled.
		if outcome := e.checkTermination(); outcome != nil {
			return outcome, e.publishEnd(ctx, outcome)
		}

		rec := &Record{
			Value:  e.round,
			Detail: fmt.Sprintf("round %d begins", e.round),
		}
		if err := e.publish(ctx, TopicRoundStart, nil, nil, rec); err != nil {
			return nil, err
		}

		// Deaths and flights mutate the order mid-round; walk a snapshot
		// and skip anyone no longer in it.
		turnOrder := append([]*entities.Combatant(nil), e.order...)
		for _, actor := range turnOrder {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapWithCode(err, errors.CodeCanceled, "encounter canceled")
			}
			if !e.inOrder(actor) {
				continue
			}
			if err := e.runTurn(ctx, actor); err != nil {
				return nil, err
			}
			if outcome := e.checkTermination(); outcome != nil {
				return outcome, e.publishEnd(ctx, outcome)
			}
		}
	}

	e.round = e.maxRounds
	e.log.Warn("encounter hit round cap without resolution",
		"max_rounds", e.maxRounds)
	outcome := e.snapshotOutcome("", true)
	return outcome, e.publishEnd(ctx, outcome)
}

func (e *Encounter) publishEnd(ctx context.Context, outcome *Outcome) error {
	detail := fmt.Sprintf("stalemate after %d rounds", outcome.Rounds)
	if !outcome.Stalemate {
		if outcome.Winner == "" {
			detail = fmt.Sprintf("mutual destruction after %d rounds", outcome.Rounds)
		} else {
			detail = fmt.Sprintf("%s win after %d rounds", outcome.Winner, outcome.Rounds)
		}
	}
	rec := &Record{
		Value:  outcome.Rounds,
		Detail: detail,
	}
	return e.publish(ctx, TopicEnd, nil, nil, rec)
}

func (e *Encounter) inOrder(c *entities.Combatant) bool {
	for _, o := range e.order {
		if o == c {
			return true
		}
	}
	return false
}

// rollInitiative fixes the turn order for the whole encounter:
// 1d20 + dex modifier, descending; ties broken by raw dexterity score,
// then a coin flip.
func (e *Encounter) rollInitiative(ctx context.Context) error {
	type entry struct {
		c    *entities.Combatant
		roll int
	}

	order := make([]entry, 0, len(e.roster))
	for _, c := range e.roster {
		natural, err := e.roller.Roll(20)
		if err != nil {
			return errors.Wrap(err, "initiative roll failed")
		}
		order = append(order, entry{c: c, roll: natural + c.Modifier(entities.AbilityDexterity)})
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].roll != order[j].roll {
			return order[i].roll > order[j].roll
		}
		return order[i].c.Scores.Dexterity > order[j].c.Scores.Dexterity
	})

	// Exact ties (same roll, same dexterity) flip a coin, consuming from
	// the seeded roller so replays match.
	for i := 1; i < len(order); i++ {
		if order[i].roll == order[i-1].roll && order[i].c.Scores.Dexterity == order[i-1].c.Scores.Dexterity {
			flip, err := e.roller.Roll(2)
			if err != nil {
				return errors.Wrap(err, "initiative tie break failed")
			}
			if flip == 2 {
				order[i], order[i-1] = order[i-1], order[i]
			}
		}
	}

	e.order = make([]*entities.Combatant, len(order))
	names := make([]string, len(order))
	for i, en := range order {
		e.order[i] = en.c
		names[i] = fmt.Sprintf("%s (%d)", en.c.Name, en.roll)
	}

	// Everyone's economy is live from the top of round 1: a combatant
	// late in the order can still react before their first turn.
	for _, c := range e.roster {
		c.Economy.Reset(c.Speed)
	}

	rec := &Record{
		Detail: "initiative order: " + strings.Join(names, ", "),
	}
	return e.publish(ctx, TopicTurnStart, nil, nil, rec)
}

// runTurn plays one combatant's full turn.
func (e *Encounter) runTurn(ctx context.Context, actor *entities.Combatant) error {
	if actor.IsDead() {
		return errors.Internalf("dead combatant %s took a turn", actor.Name)
	}

	actor.Economy.Reset(actor.Speed)

	if err := e.startOfTurn(ctx, actor); err != nil {
		return err
	}
	if actor.IsDead() {
		return nil
	}

	if actor.CurHP == 0 {
		// Dying combatants roll a death save instead of acting; stable
		// ones just lie there.
		if actor.IsDying() {
			return e.rollDeathSave(ctx, actor)
		}
		return nil
	}

	if actor.Incapacitated() {
		rec := &Record{
			Detail: fmt.Sprintf("%s is incapacitated and cannot act", actor.Name),
		}
		return e.publish(ctx, TopicTurnStart, actor, nil, rec)
	}

	for _, slot := range slotOrder {
		picked, err := e.chooseForSlot(actor, slot)
		if err != nil {
			return err
		}
		if picked == nil {
			if slot == entities.EconomyRegular {
				if err := e.fallbackDodge(ctx, actor); err != nil {
					return err
				}
			}
			continue
		}
		if err := e.performAction(ctx, actor, picked); err != nil {
			return err
		}
	}
	return nil
}

// fallbackDodge is the no-valid-action downgrade: record a warning and
// take the dodge so the turn still does something defensible.
func (e *Encounter) fallbackDodge(ctx context.Context, actor *entities.Combatant) error {
	rec := &Record{
		Detail: fmt.Sprintf("%s has no usable action and dodges instead", actor.Name),
	}
	if err := e.publish(ctx, TopicWarning, actor, nil, rec); err != nil {
		return err
	}
	if !actor.Economy.Spend(entities.EconomyRegular) {
		return errors.Internalf("%s regular slot already spent at fallback", actor.Name)
	}
	return e.applyCondition(ctx, actor, &entities.Condition{
		Name:   entities.ConditionDodging,
		Rounds: entities.IndefiniteRounds,
		Source: actor.Name,
	})
}

// performAction pays the action's costs and dispatches by kind. The
// kind set is closed; anything else is a loader bug surfacing late.
func (e *Encounter) performAction(ctx context.Context, actor *entities.Combatant, picked *choice) error {
	def := picked.def
	if !actor.Economy.Spend(def.Economy) {
		return errors.Internalf("%s spent %s slot twice (action %s)", actor.Name, def.Economy, def.Name)
	}
	if err := e.payCost(actor, def); err != nil {
		return err
	}

	switch def.Kind {
	case entities.KindAttack:
		return e.resolveAttack(ctx, actor, picked.target, def)
	case entities.KindSpell:
		return e.resolveSpell(ctx, actor, picked.target, def)
	case entities.KindMovement:
		return e.resolveMovement(ctx, actor, def)
	case entities.KindAuto:
		return e.resolveAuto(ctx, actor, def)
	case entities.KindContest:
		return e.resolveContest(ctx, actor, picked.target, def)
	case entities.KindSpecial:
		return e.resolveSpecial(ctx, actor, picked.target, def)
	default:
		return errors.Internalf("action %s has unknown kind %q", def.Name, def.Kind)
	}
}

// onReachExit resolves opportunity attacks when a combatant leaves
// melee reach. Each standing hostile with its reaction available makes
// one attack, in initiative order, before the mover's action completes.
func (e *Encounter) onReachExit(ctx context.Context, event events.Event) error {
	source := event.Source()
	if source == nil {
		return nil
	}
	mover, ok := e.byName[source.GetID()]
	if !ok {
		return nil
	}

	for _, reactor := range e.order {
		if mover.Defeated() {
			break
		}
		if !reactor.Team.Hostile(mover.Team) || reactor.Defeated() || reactor.Incapacitated() {
			continue
		}
		if !reactor.Economy.Has(entities.EconomyReaction) {
			continue
		}
		def, atk := e.opportunityAttack(reactor)
		if def == nil {
			continue
		}
		if !reactor.Economy.Spend(entities.EconomyReaction) {
			return errors.Internalf("%s spent reaction twice", reactor.Name)
		}
		rec := &Record{
			Action: def.Name,
			Detail: fmt.Sprintf("%s takes an opportunity attack against %s", reactor.Name, mover.Name),
		}
		if err := e.publish(ctx, TopicAction, reactor, mover, rec); err != nil {
			return err
		}
		// An opportunity attack is a single strike regardless of the
		// action's usual roll count.
		if err := e.resolveOneAttackRoll(ctx, reactor, mover, def, atk); err != nil {
			return err
		}
	}
	return nil
}

// opportunityAttack picks the reactor's first attack-kind action in
// name order, if it has one.
func (e *Encounter) opportunityAttack(reactor *entities.Combatant) (*entities.ActionDef, *entities.AttackDef) {
	names := make([]string, 0, len(reactor.Actions))
	for name := range reactor.Actions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def, ok := e.catalog.Actions[name]
		if !ok || def.Kind != entities.KindAttack || def.Resource != "" {
			continue
		}
		atk, ok := e.catalog.Attacks[def.Attack]
		if !ok {
			continue
		}
		return def, atk
	}
	return nil, nil
}
