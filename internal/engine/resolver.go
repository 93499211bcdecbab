package engine

import (
	"context"
	"fmt"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// d20 roll shapes.
type rollMode int

const (
	rollStraight rollMode = iota
	rollAdvantage
	rollDisadvantage
)

// rollD20 rolls one d20, or two taking the higher/lower for
// advantage/disadvantage, and returns the natural result.
func (e *Encounter) rollD20(mode rollMode) (int, error) {
	first, err := e.roller.Roll(20)
	if err != nil {
		return 0, errors.Wrap(err, "d20 roll failed")
	}
	if mode == rollStraight {
		return first, nil
	}
	second, err := e.roller.Roll(20)
	if err != nil {
		return 0, errors.Wrap(err, "d20 roll failed")
	}
	if mode == rollAdvantage {
		return max(first, second), nil
	}
	return min(first, second), nil
}

// attackMode derives advantage or disadvantage from the combatants'
// conditions. Opposing grants cancel to a straight roll. Without a grid
// every attack is treated as within melee reach, so prone targets grant
// advantage.
func attackMode(attacker, target *entities.Combatant) rollMode {
	adv := target.HasCondition(entities.ConditionProne) ||
		target.HasCondition(entities.ConditionRestrained) ||
		target.HasCondition(entities.ConditionStunned) ||
		target.HasCondition(entities.ConditionParalyzed) ||
		target.HasCondition(entities.ConditionUnconscious) ||
		target.HasCondition(entities.ConditionBlinded) ||
		attacker.HasCondition(entities.ConditionInvisible)

	dis := attacker.HasCondition(entities.ConditionProne) ||
		attacker.HasCondition(entities.ConditionRestrained) ||
		attacker.HasCondition(entities.ConditionPoisoned) ||
		attacker.HasCondition(entities.ConditionFrightened) ||
		attacker.HasCondition(entities.ConditionBlinded) ||
		target.HasCondition(entities.ConditionDodging) ||
		target.HasCondition(entities.ConditionInvisible)

	switch {
	case adv == dis:
		return rollStraight
	case adv:
		return rollAdvantage
	default:
		return rollDisadvantage
	}
}

// attackAbilityMod returns the governing modifier for the attack. The
// finesse property uses the better of strength and dexterity.
func attackAbilityMod(actor *entities.Combatant, atk *entities.AttackDef) int {
	if atk.HasProperty(entities.PropFinesse) {
		return max(actor.Modifier(entities.AbilityStrength), actor.Modifier(entities.AbilityDexterity))
	}
	return actor.Modifier(atk.Ability)
}

// resolveAttack carries out every roll of an attack action against the
// chosen target, stopping early if the target drops.
func (e *Encounter) resolveAttack(ctx context.Context, actor, target *entities.Combatant, def *entities.ActionDef) error {
	atk, ok := e.catalog.Attacks[def.Attack]
	if !ok {
		return errors.Internalf("action %s references unknown attack %s", def.Name, def.Attack)
	}

	rolls := def.AttackRolls
	if rolls == 0 {
		rolls = atk.Rolls
	}
	if rolls == 0 {
		rolls = 1
	}

	for i := 0; i < rolls; i++ {
		if target.Defeated() {
			break
		}
		if err := e.resolveOneAttackRoll(ctx, actor, target, def, atk); err != nil {
			return err
		}
	}
	return nil
}

// resolveOneAttackRoll makes a single to-hit roll and applies damage.
func (e *Encounter) resolveOneAttackRoll(ctx context.Context, actor, target *entities.Combatant, def *entities.ActionDef, atk *entities.AttackDef) error {
	natural, err := e.rollD20(attackMode(actor, target))
	if err != nil {
		return err
	}

	abilityMod := attackAbilityMod(actor, atk)
	prof := 0
	if actor.ProficientWith(atk.Categories) {
		prof = actor.Proficiency
	}
	total := natural + abilityMod + prof + atk.HitMod

	crit := natural == 20
	hit := crit || (natural != 1 && total >= target.AC)

	verdict := "misses"
	if hit {
		verdict = "hits"
		if crit {
			verdict = "critically hits"
		}
	}
	rec := &Record{
		Action: def.Name,
		Value:  total,
		Detail: fmt.Sprintf("%s %s %s with %s (rolled %d, total %d vs AC %d)",
			actor.Name, verdict, target.Name, atk.Name, natural, total, target.AC),
	}
	if err := e.publish(ctx, TopicAttack, actor, target, rec); err != nil {
		return err
	}
	if !hit {
		return nil
	}

	byType, err := e.rollAttackDamage(actor, atk, def.Offhand, crit)
	if err != nil {
		return err
	}
	_, err = e.dealDamage(ctx, actor, target, byType, crit)
	return err
}

// rollAttackDamage rolls every damage component, doubling dice on a
// crit. Flat modifiers are never doubled. An off-hand strike caps the
// ability contribution at zero.
func (e *Encounter) rollAttackDamage(actor *entities.Combatant, atk *entities.AttackDef, offhand, crit bool) (map[string]int, error) {
	byType := make(map[string]int)
	for _, comp := range atk.Damage {
		amount, err := e.rollDamageComponent(comp, crit)
		if err != nil {
			return nil, err
		}
		if comp.Ability != "" {
			mod := actor.Modifier(comp.Ability)
			if atk.HasProperty(entities.PropFinesse) {
				mod = max(actor.Modifier(entities.AbilityStrength), actor.Modifier(entities.AbilityDexterity))
			}
			if offhand && mod > 0 {
				mod = 0
			}
			amount += mod
		}
		if amount < 0 {
			amount = 0
		}
		byType[comp.Type] += amount
	}
	return byType, nil
}

// rollDamageComponent rolls one component's dice plus flat bonus.
func (e *Encounter) rollDamageComponent(comp entities.DamageComponent, crit bool) (int, error) {
	count := comp.Dice.Count
	if crit {
		count *= 2
	}
	total := comp.Dice.Flat
	if count > 0 {
		rolls, err := e.roller.RollN(count, comp.Dice.Sides)
		if err != nil {
			return 0, errors.Wrap(err, "damage roll failed")
		}
		for _, r := range rolls {
			total += r
		}
	}
	return total, nil
}

// adjustDamage applies the target's damage-type adjustments. Immunity
// zeroes the component; resistance halves rounding down and takes
// precedence over vulnerability when a type appears in both lists.
func adjustDamage(target *entities.Combatant, dmgType string, amount int) int {
	for _, t := range target.Immunities {
		if t == dmgType {
			return 0
		}
	}
	for _, t := range target.Resistances {
		if t == dmgType {
			return amount / 2
		}
	}
	for _, t := range target.Vulnerabilities {
		if t == dmgType {
			return amount * 2
		}
	}
	return amount
}

// dealDamage applies typed damage to the target: per-type adjustment,
// temp HP absorption, drop-to-zero handling, death-save failures for a
// downed target, and the concentration check. Returns the adjusted
// total.
func (e *Encounter) dealDamage(ctx context.Context, source, target *entities.Combatant, byType map[string]int, crit bool) (int, error) {
	total := 0
	for dmgType, amount := range byType {
		total += adjustDamage(target, dmgType, amount)
	}

	rec := &Record{
		Value:  total,
		Detail: fmt.Sprintf("%s takes %d damage from %s", target.Name, total, source.GetID()),
	}
	if err := e.publish(ctx, TopicDamage, source, target, rec); err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, nil
	}

	if target.CurHP == 0 {
		// Hitting someone already down worsens their saves instead of
		// reducing HP further.
		return total, e.damageWhileDowned(ctx, target, crit)
	}

	wasAbove := target.CurHP
	target.ReduceHP(total)

	if target.Concentrating != "" && target.CurHP > 0 {
		if err := e.concentrationCheck(ctx, target, total); err != nil {
			return 0, err
		}
	}

	if target.CurHP == 0 && wasAbove > 0 {
		if err := e.dropToZero(ctx, target); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// damageWhileDowned adds death-save failures to a combatant at zero HP:
// one, or two on a crit. A stable combatant loses stability and resumes
// dying first.
func (e *Encounter) damageWhileDowned(ctx context.Context, target *entities.Combatant, crit bool) error {
	if target.IsDead() {
		return nil
	}
	if target.IsStable() {
		e.removeCondition(target, entities.ConditionStable)
		target.DeathSaves.Reset()
		if err := e.applyCondition(ctx, target, &entities.Condition{
			Name:   entities.ConditionDying,
			Rounds: entities.IndefiniteRounds,
		}); err != nil {
			return err
		}
	}

	failures := 1
	if crit {
		failures = 2
	}
	target.DeathSaves.Failures += failures

	rec := &Record{
		Value:  target.DeathSaves.Failures,
		Detail: fmt.Sprintf("%s suffers %d death save failure(s) from damage (%d total)", target.Name, failures, target.DeathSaves.Failures),
	}
	if err := e.publish(ctx, TopicDeathSave, target, nil, rec); err != nil {
		return err
	}

	if target.DeathSaves.Failures >= 3 {
		return e.kill(ctx, target)
	}
	return nil
}

// dropToZero puts a combatant into the dying state and breaks any
// concentration they were holding.
func (e *Encounter) dropToZero(ctx context.Context, target *entities.Combatant) error {
	if target.Concentrating != "" {
		if err := e.breakConcentration(ctx, target); err != nil {
			return err
		}
	}
	target.DeathSaves.Reset()
	return e.applyCondition(ctx, target, &entities.Condition{
		Name:   entities.ConditionDying,
		Rounds: entities.IndefiniteRounds,
	})
}

// concentrationCheck forces a constitution save against
// DC max(10, damage/2); failure breaks concentration.
func (e *Encounter) concentrationCheck(ctx context.Context, target *entities.Combatant, damage int) error {
	dc := max(10, damage/2)
	natural, err := e.rollD20(rollStraight)
	if err != nil {
		return err
	}
	total := natural + target.SaveBonus(entities.AbilityConstitution)
	held := total >= dc

	verdict := "loses"
	if held {
		verdict = "holds"
	}
	rec := &Record{
		Action: target.Concentrating,
		Value:  total,
		Detail: fmt.Sprintf("%s %s concentration on %s (rolled %d vs DC %d)", target.Name, verdict, target.Concentrating, total, dc),
	}
	if err := e.publish(ctx, TopicSave, target, nil, rec); err != nil {
		return err
	}

	if !held {
		return e.breakConcentration(ctx, target)
	}
	return nil
}

// breakConcentration ends the caster's concentration and strips every
// condition it was sustaining, on anyone.
func (e *Encounter) breakConcentration(ctx context.Context, caster *entities.Combatant) error {
	spell := caster.Concentrating
	caster.Concentrating = ""

	for _, c := range e.roster {
		for _, cond := range c.Conditions {
			if cond.Concentration && cond.Source == caster.Name {
				e.removeCondition(c, cond.Name)
				rec := &Record{
					Action: spell,
					Detail: fmt.Sprintf("%s loses %s as %s's concentration ends", c.Name, cond.Name, caster.Name),
				}
				if err := e.publish(ctx, TopicCondition, caster, c, rec); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resolveSpell casts a spell action: pays the slot, handles
// concentration, then applies the data-driven payload (healing, save
// for damage, applied condition).
func (e *Encounter) resolveSpell(ctx context.Context, actor, target *entities.Combatant, def *entities.ActionDef) error {
	spell, ok := e.catalog.Spells[def.Spell]
	if !ok {
		return errors.Internalf("action %s references unknown spell %s", def.Name, def.Spell)
	}

	if spell.Level > 0 {
		slot := actor.NextSlot(spell.Level)
		if slot == 0 {
			return errors.Internalf("%s cast %s with no slot available", actor.Name, spell.Name)
		}
		if !actor.SpendSlot(slot) {
			return errors.Internalf("%s failed to spend level %d slot", actor.Name, slot)
		}
	}

	// A new concentration spell replaces any existing one.
	if spell.Concentration {
		if actor.Concentrating != "" {
			if err := e.breakConcentration(ctx, actor); err != nil {
				return err
			}
		}
		actor.Concentrating = spell.Name
	}

	rec := &Record{
		Action: def.Name,
		Detail: fmt.Sprintf("%s casts %s at %s", actor.Name, spell.Name, target.Name),
	}
	if err := e.publish(ctx, TopicAction, actor, target, rec); err != nil {
		return err
	}

	if !spell.Heal.IsZero() {
		if err := e.resolveHealing(ctx, actor, target, spell); err != nil {
			return err
		}
	}

	if len(spell.Damage) > 0 || spell.Applies != "" {
		if err := e.resolveSpellEffect(ctx, actor, target, spell); err != nil {
			return err
		}
	}
	return nil
}

// resolveHealing rolls the spell's healing and brings downed targets
// back on their feet.
func (e *Encounter) resolveHealing(ctx context.Context, actor, target *entities.Combatant, spell *entities.SpellDef) error {
	amount, err := e.rollDamageComponent(entities.DamageComponent{Dice: spell.Heal}, false)
	if err != nil {
		return err
	}
	if spell.HealAbility != "" {
		amount += actor.Modifier(spell.HealAbility)
	}

	wasDown := target.CurHP == 0 && !target.IsDead()
	healed := target.ApplyHealing(amount)
	if wasDown && healed > 0 {
		e.reviveFromZero(target)
	}

	rec := &Record{
		Action: spell.Name,
		Value:  healed,
		Detail: fmt.Sprintf("%s heals %s for %d (now %d/%d HP)", actor.Name, target.Name, healed, target.CurHP, target.MaxHP),
	}
	return e.publish(ctx, TopicHealing, actor, target, rec)
}

// resolveSpellEffect applies save-gated damage and conditions.
func (e *Encounter) resolveSpellEffect(ctx context.Context, actor, target *entities.Combatant, spell *entities.SpellDef) error {
	saved := false
	if spell.SaveAbility != "" {
		natural, err := e.rollD20(rollStraight)
		if err != nil {
			return err
		}
		dc := actor.SpellDC()
		total := natural + target.SaveBonus(spell.SaveAbility)
		saved = total >= dc

		verdict := "fails"
		if saved {
			verdict = "makes"
		}
		rec := &Record{
			Action: spell.Name,
			Value:  total,
			Detail: fmt.Sprintf("%s %s a %s save against %s (rolled %d vs DC %d)", target.Name, verdict, spell.SaveAbility, spell.Name, total, dc),
		}
		if err := e.publish(ctx, TopicSave, actor, target, rec); err != nil {
			return err
		}
	}

	if len(spell.Damage) > 0 {
		if !saved || spell.HalfOnSave {
			byType := make(map[string]int)
			for _, comp := range spell.Damage {
				amount, err := e.rollDamageComponent(comp, false)
				if err != nil {
					return err
				}
				if comp.Ability != "" {
					amount += actor.Modifier(comp.Ability)
				}
				if saved {
					amount /= 2
				}
				byType[comp.Type] += amount
			}
			if _, err := e.dealDamage(ctx, actor, target, byType, false); err != nil {
				return err
			}
		}
	}

	if spell.Applies != "" && !saved {
		rounds := spell.AppliesRounds
		if rounds == 0 {
			rounds = spell.Duration.Rounds()
		}
		cond := &entities.Condition{
			Name:          spell.Applies,
			Rounds:        rounds,
			Source:        actor.Name,
			Concentration: spell.Concentration,
		}
		if err := e.applyCondition(ctx, target, cond); err != nil {
			return err
		}
		rec := &Record{
			Action: spell.Name,
			Value:  rounds,
			Detail: fmt.Sprintf("%s is %s by %s", target.Name, spell.Applies, spell.Name),
		}
		if err := e.publish(ctx, TopicCondition, actor, target, rec); err != nil {
			return err
		}
	}
	return nil
}

// resolveContest runs an opposed check. The initiator rolls its declared
// skill; the defender answers with the better of an athletics (str) or
// acrobatics (dex) check. Ties go to the defender.
func (e *Encounter) resolveContest(ctx context.Context, actor, target *entities.Combatant, def *entities.ActionDef) error {
	actorNat, err := e.rollD20(rollStraight)
	if err != nil {
		return err
	}
	actorMod := actor.Modifier(def.ContestAbility)
	if hasSkill(actor, def.ContestSkill) {
		actorMod += actor.Proficiency
	}
	actorTotal := actorNat + actorMod

	targetNat, err := e.rollD20(rollStraight)
	if err != nil {
		return err
	}
	targetMod := target.Modifier(entities.AbilityStrength)
	if hasSkill(target, "athletics") {
		targetMod += target.Proficiency
	}
	if alt := contestDefenseDex(target); alt > targetMod {
		targetMod = alt
	}
	targetTotal := targetNat + targetMod

	won := actorTotal > targetTotal

	verdict := "loses"
	if won {
		verdict = "wins"
	}
	rec := &Record{
		Action: def.Name,
		Value:  actorTotal,
		Detail: fmt.Sprintf("%s %s a %s contest against %s (%d vs %d)", actor.Name, verdict, def.Name, target.Name, actorTotal, targetTotal),
	}
	if err := e.publish(ctx, TopicContest, actor, target, rec); err != nil {
		return err
	}

	if won && def.AppliesOnWin != "" {
		cond := &entities.Condition{
			Name:   def.AppliesOnWin,
			Rounds: entities.IndefiniteRounds,
			Source: actor.Name,
		}
		if err := e.applyCondition(ctx, target, cond); err != nil {
			return err
		}
		rec := &Record{
			Action: def.Name,
			Detail: fmt.Sprintf("%s is %s by %s", target.Name, def.AppliesOnWin, actor.Name),
		}
		if err := e.publish(ctx, TopicCondition, actor, target, rec); err != nil {
			return err
		}
	}
	return nil
}

func hasSkill(c *entities.Combatant, skill string) bool {
	if skill == "" {
		return false
	}
	for _, s := range c.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

func contestDefenseDex(c *entities.Combatant) int {
	mod := c.Modifier(entities.AbilityDexterity)
	if hasSkill(c, "acrobatics") {
		mod += c.Proficiency
	}
	return mod
}
