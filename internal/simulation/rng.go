package simulation

import "hash/fnv"

// SeedPartition derives a reproducible sub-seed for a named parallel unit
// by folding an FNV-1a hash of the name into the master seed. Cross-policy
// sweeps give each policy its own random source seeded this way, so
// per-policy results stay bit-for-bit reproducible regardless of goroutine
// scheduling.
func SeedPartition(masterSeed int64, name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return masterSeed ^ int64(h.Sum64())
}
