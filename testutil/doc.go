// Package testutil provides testing utilities for content services.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic payload generation and a blob store wrapper
// that injects faults into reads.
//
// # Random Payloads
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(4096)
//
// # Fault Injection
//
//	store := testutil.NewFaultyStore(blobstore.NewMemoryStore())
//	store.AddRule("textures/", testutil.Fault{FailAfterBytes: 16})
package testutil
