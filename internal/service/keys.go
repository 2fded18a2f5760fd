package service

import (
	"net/url"
	"strings"
)

// Read names a cached read of GameSettings.
type Read string

// Cached reads.
const (
	ReadGameConfig        Read = "LoadGameConfig"
	ReadDefaultExecutable Read = "ResolveDefaultExecutable"
	ReadGames             Read = "ListGames"
	ReadPresets           Read = "ListPresets"
)

// Mutation names a write of GameSettings.
type Mutation string

// Mutating operations.
const (
	MutationSaveGameConfig    Mutation = "SaveGameConfig"
	MutationSetGameVisibility Mutation = "SetGameVisibility"
)

// keyPart escapes one key component so that ':' only ever separates
// components.
func keyPart(s string) string { return url.QueryEscape(s) }

func gameConfigKey(gameID string) string { return "game-config:" + keyPart(gameID) }

func executablePrefix(gameID string) string { return "default-exe:" + keyPart(gameID) + ":" }

func executableKey(gameID, folder, endpoint string) string {
	return executablePrefix(gameID) + keyPart(folder) + ":" + keyPart(endpoint)
}

const gamesKey = "games"

func presetsKey(gameID string) string { return "presets:" + keyPart(gameID) }

// KeyPattern is one entry of the invalidation table. Template may contain
// the placeholder {game}; a Prefix pattern drops every key starting with it.
type KeyPattern struct {
	Template string
	Prefix   bool
}

// Expand fills in the game placeholder with the escaped game ID.
func (k KeyPattern) Expand(gameID string) string {
	return strings.ReplaceAll(k.Template, "{game}", keyPart(gameID))
}

// Invalidations lists, per mutation, the cache keys it must drop on success.
var Invalidations = map[Mutation][]KeyPattern{
	MutationSaveGameConfig: {
		{Template: "game-config:{game}"},
		{Template: "default-exe:{game}:", Prefix: true},
		{Template: gamesKey},
	},
	MutationSetGameVisibility: {
		{Template: "game-config:{game}"},
		{Template: gamesKey},
	},
}

// ReadDependencies lists, per read, the mutations whose writes change what
// the read returns.
var ReadDependencies = map[Read][]Mutation{
	// the saved configuration itself
	ReadGameConfig: {MutationSaveGameConfig, MutationSetGameVisibility},
	// a saved executable overrides the host's answer
	ReadDefaultExecutable: {MutationSaveGameConfig},
	// the saved hidden flag is overlaid on the host catalogue
	ReadGames: {MutationSaveGameConfig, MutationSetGameVisibility},
	// presets come from the host only
	ReadPresets: nil,
}
