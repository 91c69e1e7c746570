package malaria

// suidGenerator hands out the host-local monotonically increasing
// identifiers spec.md assigns to each Infection (the "suid" field). It is
// deliberately not github.com/segmentio/ksuid: ksuid is k-sortable (time
// plus random payload), not strictly monotonic, so a burst of infections
// created within the same second can sort out of creation order. ksuid is
// still used elsewhere in this repository for Recorder run identifiers,
// where that property doesn't matter.
type suidGenerator struct {
	next uint64
}

func (g *suidGenerator) Next() uint64 {
	g.next++
	return g.next
}
