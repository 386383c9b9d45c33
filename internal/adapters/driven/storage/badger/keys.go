package badger

import "encoding/binary"

// Key prefixes for query history data.
const (
	entryPrefix = "qhent:"
	keyIndex    = "qhkey:"
	entrySeq    = "qhseq"
)

// makeEntryKey generates the primary key for an entry.
// Big-endian sequence numbers make prefix scans return creation order.
func makeEntryKey(seq uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], seq)
	return key
}

// makeIndexKey generates the secondary index key for an encoded query key.
func makeIndexKey(encodedKey string) []byte {
	return []byte(keyIndex + encodedKey)
}
