package events

import "hash/fnv"

// Partition maps a doc_id to one of n partitions with FNV-1a. All events for
// the same document land on the same partition, which is what preserves
// per-document ordering when multiple worker instances run concurrently.
func Partition(docId string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(docId))
	return int(h.Sum32() % uint32(n))
}
