// Package testing provides a standardized test suite for implementations of
// the engine.Engine interface.
//
// RunEngineTests drives any implementation through the shared contract:
// point operations, namespace isolation and provisioning, atomic batch
// application (including last-writer-wins ordering inside one batch),
// discarded batches leaving no trace, concurrent access, and edge cases such
// as empty and binary keys. Tests for features an implementation does not
// advertise are skipped, mirroring the SupportsFeature flags.
//
// Engine packages use it from a small interface test file:
//
//	func TestEngineInterface(t *testing.T) {
//		enginetest.RunEngineTests(t, "memkv", func(tb testing.TB) engine.Engine {
//			eng, err := memkv.Open(tb.TempDir(), nil)
//			...
//		})
//	}
package testing
