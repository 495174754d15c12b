// Package ggtest drives message-driven UI applications without a display
// and checks what they render.
//
// # Overview
//
// A test constructs an application, replays a trace of events against it
// and inspects the result. Frames are rendered off-screen by the
// compositor package and read back as screenshot.Screenshot values, which
// can be compared with predicates or golden PNG files.
//
// # Quick Start
//
//	type trace = ggtest.Trace[*counter.App, counter.Message]
//
//	events := trace{}.
//	    Send(counter.Increment).
//	    Send(counter.Increment).
//	    Assert("value is 2", func(a *counter.App) bool { return a.Value() == 2 }).
//	    Save("counter.png")
//
//	app, err := ggtest.Run(ctx, counter.New, counter.Flags{}, events)
//
// # Events
//
// Events are applied strictly in order on the calling goroutine:
//   - SendMessage calls Update; the returned command is discarded
//   - Wait sleeps, honoring ctx
//   - AssertState checks a predicate on the application
//   - MutateState changes the application without going through Update
//   - CaptureAndCheck renders a frame and checks a predicate on it
//   - CaptureAndSave renders a frame and writes it as PNG
//
// The first failing event ends the run. Failed predicates produce an
// *AssertionError (see IsAssertion); anything else is an *EventError
// matching ErrInfrastructure.
//
// # Frames
//
// Capture renders at DefaultSize unless WithSize is given. Captured frames
// keep the padded row layout of GPU readback, so a frame only compares
// Equal to a decoded PNG after screenshot.RoundTrip. SamePixels compares
// pixels regardless of layout.
//
// # Golden images
//
// AssertGolden compares a frame with testdata/golden/<name>.png. Set
// GGTEST_UPDATE=1 to write the golden images instead. GGTEST_BACKEND
// selects the compositor backend, for example "software" on machines
// without a GPU.
package ggtest
