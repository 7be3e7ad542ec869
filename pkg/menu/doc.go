// Package menu holds the interactive state of a ring segment menu: which
// segments are revealed and at what scale, which button has focus, and
// the material each button shows. It does no rendering; front ends poll
// the state after each frame step.
package menu
