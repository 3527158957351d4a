package cipher

// byteReverseLUT[b] is b with its bits reversed, precomputed once.
var byteReverseLUT [256]byte

func init() {
	for i := 0; i < 256; i++ {
		rev := (i >> 4) | ((i & 0xF) << 4)
		rev = ((rev & 0xCC) >> 2) | ((rev & 0x33) << 2)
		rev = ((rev & 0xAA) >> 1) | ((rev & 0x55) << 1)
		byteReverseLUT[i] = byte(rev)
	}
}

// DecodeSoundBankSection bit-reverses then XORs a contiguous slice of an
// .assets.bank payload. startIndex is the slice's absolute offset within
// the full payload; the key stream is position-indexed, so any section can
// be decoded independently of the others given its own startIndex, so a
// caller can split a payload into chunks and decode them in parallel.
func DecodeSoundBankSection(section []byte, startIndex int) []byte {
	out := make([]byte, len(section))
	keyLen := len(rtmiKeySound)
	keyIndex := startIndex % keyLen
	for i, b := range section {
		out[i] = byteReverseLUT[b] ^ rtmiKeySound[keyIndex]
		keyIndex++
		if keyIndex == keyLen {
			keyIndex = 0
		}
	}
	return out
}

// DecodeSoundBank decodes an entire .assets.bank payload in one shot; it is
// equivalent to DecodeSoundBankSection(data, 0) and exists for callers that
// don't need sharding.
func DecodeSoundBank(data []byte) []byte {
	return DecodeSoundBankSection(data, 0)
}
