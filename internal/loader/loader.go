// Package loader reads the declarative JSON data files (attacks,
// actions, spells, roster) and builds validated entities. Every defect
// is rejected here, before an encounter is constructed: the engine
// treats catalog inconsistencies as internal errors.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendaletaas/dndCombatSim/internal/entities"
	"github.com/rendaletaas/dndCombatSim/internal/errors"
)

// Data file names inside a data directory.
const (
	AttacksFile = "attacks.json"
	ActionsFile = "actions.json"
	SpellsFile  = "spells.json"
	RosterFile  = "roster.json"
)

// LoadCatalog reads attacks.json, actions.json, and spells.json from
// dir and builds the shared definition catalog.
func LoadCatalog(dir string) (*entities.Catalog, error) {
	catalog := entities.NewCatalog()

	attacksRaw, err := os.ReadFile(filepath.Join(dir, AttacksFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", AttacksFile)
	}
	if err := parseAttacks(attacksRaw, catalog); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", AttacksFile)
	}

	spellsRaw, err := os.ReadFile(filepath.Join(dir, SpellsFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", SpellsFile)
	}
	if err := parseSpells(spellsRaw, catalog); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", SpellsFile)
	}

	actionsRaw, err := os.ReadFile(filepath.Join(dir, ActionsFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", ActionsFile)
	}
	if err := parseActions(actionsRaw, catalog); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", ActionsFile)
	}

	return catalog, nil
}

// LoadRoster reads roster.json from dir and builds the combatants,
// validating every action reference against the catalog. Duplicate
// names get numeric suffixes so every combatant stays addressable.
func LoadRoster(dir string, catalog *entities.Catalog) ([]*entities.Combatant, error) {
	raw, err := os.ReadFile(filepath.Join(dir, RosterFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", RosterFile)
	}
	roster, err := parseRoster(raw, catalog)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", RosterFile)
	}
	return roster, nil
}

// uniqueName suffixes repeated names: goblin, goblin_2, goblin_3.
func uniqueName(name string, seen map[string]int) string {
	seen[name]++
	if seen[name] == 1 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, seen[name])
}
