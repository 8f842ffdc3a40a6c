package dag

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

func sum64(data []byte) uint64 {
	sum := blake3.Sum256(data)
	return binary.LittleEndian.Uint64(sum[:8])
}

// CombineHashes folds an ordered sequence of hashes into one. The result
// depends only on the inputs and their order.
func CombineHashes(hashes ...uint64) uint64 {
	buf := make([]byte, 8*len(hashes))
	for i, h := range hashes {
		binary.LittleEndian.PutUint64(buf[8*i:], h)
	}
	return sum64(buf)
}

// HashString hashes s.
func HashString(s string) uint64 {
	return sum64([]byte(s))
}

// HashValue hashes an arbitrary parameter value through its canonical JSON
// encoding (map keys sorted). Values JSON cannot encode fall back to their Go
// syntax representation.
func HashValue(v any) uint64 {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%T:%#v", v, v))
	}
	return sum64(data)
}

// ShortHash renders the 12 hex character fingerprint shown in node and
// stream descriptions.
func ShortHash(h uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return hex.EncodeToString(b[:])[:12]
}
