package detect

const (
	syncByte0 = 0x0B
	syncByte1 = 0x77

	// maxFrameBytes is the largest legal AC3 frame.
	maxFrameBytes = 3840
	maxSampleRate = 3
	maxBSID       = 16
)

var (
	syncWord        = []byte{syncByte0, syncByte1}
	swappedSyncWord = []byte{syncByte1, syncByte0}
)

// ValidHeader reports whether buf holds a plausible AC3 frame header at p.
// Out-of-range reads count as an invalid header.
func ValidHeader(buf []byte, p int) bool {
	// bsid lives in byte p+5.
	if p < 0 || p+5 >= len(buf) {
		return false
	}
	if buf[p] != syncByte0 || buf[p+1] != syncByte1 {
		return false
	}

	frameSize := int(buf[p+2]&0x3F)<<8 | int(buf[p+3])
	if frameSize == 0 || frameSize > maxFrameBytes {
		return false
	}

	sampleRate := (buf[p+4] & 0xC0) >> 6
	bsid := (buf[p+5] & 0xF8) >> 3
	return sampleRate <= maxSampleRate && bsid <= maxBSID
}

func hasSyncAt(buf []byte, p int) bool {
	return p >= 0 && p+1 < len(buf) && buf[p] == syncByte0 && buf[p+1] == syncByte1
}
