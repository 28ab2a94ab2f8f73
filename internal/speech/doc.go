// Package speech turns narration text into a WAV file.
//
// The default Synthesizer shells out to espeak-ng (or a compatible binary
// such as espeak). Rate is in words per minute; volume is a 0..1 fraction
// scaled onto espeak's 0..200 amplitude range where 100 is normal.
package speech
