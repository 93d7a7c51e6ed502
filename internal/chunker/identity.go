package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// ChunkID is the content address of a chunk. The source ref is length-prefixed so that
// ("ab","c") and ("a","bc") never share an id.
func ChunkID(sourceRef, chunkText string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(sourceRef))))
	h.Write([]byte{':'})
	h.Write([]byte(sourceRef))
	h.Write([]byte{0})
	h.Write([]byte(chunkText))
	return hex.EncodeToString(h.Sum(nil))
}
