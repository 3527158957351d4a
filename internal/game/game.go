// Package game identifies which of the three supported titles an archive
// belongs to. The choice drives cipher selection, ValueTree string-ref
// width, and bytecode opcode table selection.
package game

import "strings"

// Game is the title an archive (or a file extracted from one) belongs to.
type Game int

const (
	Unknown Game = iota
	ThimbleweedPark
	Delores
	ReturnToMonkeyIsland
)

func (g Game) String() string {
	switch g {
	case ThimbleweedPark:
		return "ThimbleweedPark"
	case Delores:
		return "Delores"
	case ReturnToMonkeyIsland:
		return "ReturnToMonkeyIsland"
	default:
		return "Unknown"
	}
}

// FromArchiveBasename chooses a Game from an archive file's basename,
// matching on prefix: "ThimbleweedPark*", "Delores*", "Weird*" (the
// shipped basename for Return to Monkey Island), else Unknown.
func FromArchiveBasename(basename string) Game {
	switch {
	case strings.HasPrefix(basename, "ThimbleweedPark"):
		return ThimbleweedPark
	case strings.HasPrefix(basename, "Delores"):
		return Delores
	case strings.HasPrefix(basename, "Weird"):
		return ReturnToMonkeyIsland
	default:
		return Unknown
	}
}

// StringRefWidth reports the byte width of a ValueTree stringRef for this
// game: 2 bytes for Return to Monkey Island, 4 bytes otherwise.
func (g Game) StringRefWidth() int {
	if g == ReturnToMonkeyIsland {
		return 2
	}
	return 4
}
