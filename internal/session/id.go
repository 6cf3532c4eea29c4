package session

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Session ids are ULIDs: 48 bits of millisecond timestamp followed by 80
// bits of randomness, Crockford Base32 encoded into 26 characters. A
// per-millisecond sequence in the first random bytes keeps ids sortable.

var (
	idMu    sync.Mutex
	lastMs  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func newID() string {
	idMu.Lock()
	ms := uint64(time.Now().UnixMilli())
	if ms <= lastMs {
		ms = lastMs
		lastSeq++
	} else {
		lastMs = ms
		lastSeq = 0
	}
	seq := lastSeq
	idMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ms<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeBase32(b)
}

// encodeBase32 writes the 128 bits of b as 26 Crockford characters. The
// first character carries two zero pad bits.
func encodeBase32(b [16]byte) string {
	var out [26]byte
	for i := range out {
		v := 0
		for j := 0; j < 5; j++ {
			v <<= 1
			bit := i*5 + j - 2
			if bit >= 0 {
				v |= int(b[bit/8]>>(7-bit%8)) & 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
