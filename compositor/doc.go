// Package compositor renders widget primitives into an off-screen GPU
// texture and reads the result back to host memory.
//
// A Compositor negotiates a backend and adapter once, in New, and then
// alternates Configure, Present and Read. Every Present encodes the clear,
// the upload of the rasterized frame and the copy into the readback buffer,
// then waits for the queue to drain, so a following Read always sees the
// frame just presented.
//
// # Backends
//
// Backends are kept in a registry keyed by name. The software and noop
// backends are always present; vulkan is registered on platforms that
// support it unless built with the nogpu tag. When no backend is requested
// New tries vulkan and then software.
//
//	c, err := compositor.New(ctx, compositor.WithBackendName(compositor.BackendSoftware))
//
// # Readback layout
//
// The readback buffer uses rows padded to CopyBytesPerRowAlignment, so the
// screenshot returned by Read carries GPUReadback provenance and may be
// wider in memory than in pixels.
package compositor
