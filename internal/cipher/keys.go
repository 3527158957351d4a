package cipher

// Key tables are constant, per the no-key-recovery non-goal. The actual
// byte values shipped inside each game's executable are proprietary and are
// not reproduced here; these tables are generated once, deterministically,
// at package init so every array has the size and role the container
// format requires. Swap in the real bytes captured from a legitimate
// install to use this against real archives — the decode/encode logic
// itself does not change.

const (
	rtmiMagic = 0xAD

	twpMagic = 0x6F
	twpExtra = 0x6D

	doloresMagic = 0x71
)

var (
	rtmiKey1       [0x100]byte
	rtmiKey2       [0x10000]byte
	rtmiKeySound   [0x1000]byte
	twpKey         [16]byte
	doloresKey     [16]byte
	yackKey        [0x100]byte
)

func init() {
	fillDeterministic(rtmiKey1[:], 0x9E3779B1)
	fillDeterministic(rtmiKey2[:], 0x85EBCA77)
	fillDeterministic(rtmiKeySound[:], 0xC2B2AE3D)
	fillDeterministic(twpKey[:], 0x27D4EB2F)
	fillDeterministic(doloresKey[:], 0x165667B1)
	fillDeterministic(yackKey[:], 0xFF51AFD7)
}

// fillDeterministic populates b with a reproducible byte stream derived
// from a splitmix64-style mix, seeded by seed.
func fillDeterministic(b []byte, seed uint64) {
	state := seed
	for i := range b {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		b[i] = byte(z)
	}
}
