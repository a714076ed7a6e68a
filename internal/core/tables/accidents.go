package tables

import "github.com/JonMunkholm/accidents/internal/core"

func init() {
	registerCaracteristiques()
	registerLieux()
	registerVehicules()
	registerUsagers()
}

func registerCaracteristiques() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableCaracteristiques,
			Label: "Characteristics",
			Order: 0,
		},
		Patterns: []string{"caract-{year}.csv"},
		Required: true,
	})
}

func registerLieux() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableLieux,
			Label: "Locations",
			Order: 1,
		},
		Patterns: []string{"lieux-{year}.csv"},
		Required: true,
		JoinKeys: []string{core.ColAccident},
		Suffixes: [2]string{"_x", "_y"},
	})
}

func registerVehicules() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableVehicules,
			Label: "Vehicles",
			Order: 2,
		},
		Patterns: []string{"vehicules-{year}.csv"},
		JoinKeys: []string{core.ColAccident},
		Suffixes: [2]string{"", "_vehicules"},
	})
}

func registerUsagers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.TableUsagers,
			Label: "Persons",
			Order: 3,
		},
		Patterns:   []string{"usagers-{year}.csv"},
		JoinKeys:   []string{core.ColAccident, core.ColVehicle},
		KeySources: map[string]string{core.ColVehicle: core.TableVehicules},
		Suffixes:   [2]string{"", "_usagers"},
	})
}
