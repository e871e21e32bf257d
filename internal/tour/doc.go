// Package tour implements the guided-tour state machine.
//
// An Engine owns a single Run: the ordered steps of a tour definition, the
// current index and the lifecycle (Idle, Running, Completed, Skipped). User
// intents (Next, Back, Skip, Close) move the run; each move goes through the
// same pipeline:
//
//  1. update the index and notify listeners (StepChanged)
//  2. ask the scroll coordinator for a plan and hold its lock
//  3. after the settle window, resolve the step's target element
//  4. place the tooltip and hand a Frame to every renderer
//  5. on the next animation tick, bring an off-screen target into view and
//     re-place once that scroll has settled
//
// Viewport changes (debounced resize, immediate orientation change) and passive
// scroll events re-run step 4 for the current step. Passive scroll is ignored
// while the scroll coordinator holds its lock; a single recompute follows the
// unlock instead.
//
// # Threading
//
// All state lives behind one mutex. Timers come from a clock.Scheduler and
// capture a generation number; a timer that fires after the run moved on, was
// skipped or was deactivated does nothing. Renderers and listeners are always
// called after the mutex is released, so they may call back into the Engine.
//
// # Persistence
//
// Completing or skipping a tour marks its storage key in a Store. Activate
// refuses to start a marked tour unless forced (replay). Store errors are
// logged and never stop the tour.
//
// # Example
//
//	eng, err := tour.New(tour.Options{
//	    Definition: def,
//	    Host:       page,
//	    Store:      registry,
//	    Renderers:  []tour.Renderer{overlay},
//	})
//	if err != nil {
//	    return err
//	}
//	eng.Activate(false)
//	...
//	eng.Next()
package tour
