package match

// MapGreatWar is the default 30-state map players start on.
const MapGreatWar = "great_war"

// rosters lists the playable states per map. Seeded into the store at
// startup so match creation can copy the roster without code changes.
var rosters = map[string][]string{
	MapGreatWar: {
		"Finland", "Austria-Hungary", "Arabia", "Great Britain", "East Libya",
		"East Algeria", "German Empire", "Greenland", "Greece", "Egypt",
		"West Libya", "West Algeria", "Spain", "Italy", "Caucasus",
		"Lithuania", "Morocco", "Norway", "Ottoman Empire", "Poland",
		"Russia", "Romania", "North Canada", "North Russia", "Northern USA",
		"France", "Central USA", "Sweden", "South Canada", "Southern USA",
	},
}

// Rosters returns the built-in map rosters keyed by map name.
func Rosters() map[string][]string {
	out := make(map[string][]string, len(rosters))
	for name, states := range rosters {
		out[name] = append([]string(nil), states...)
	}
	return out
}
