// Package preview runs a tour in the terminal against a simulated page.
//
// The preview is a Bubble Tea program. The tour engine renders into a Bridge,
// which hands frames to the model as messages; key presses drive the engine
// the way a user would in a browser: advance, go back, close, scroll and
// resize the window.
//
// The page is drawn as a scaled character grid. Element outlines use "·",
// the highlight ring uses "#" and the tour panel is filled with "▒".
package preview
