// Package audio plays synthesized speech through oto/v3. Sources are decoded
// PCM run through a beep pipeline for rate and volume, and word cues are
// reported as the listener reaches them.
package audio
