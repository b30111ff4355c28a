// Package engines contains the synthesis backends. Local engines run
// espeak-ng or piper as subprocesses; cloud engines call Google Cloud
// Text-to-Speech or the ElevenLabs streaming API. Every engine returns
// PCM16 audio with one cue per spoken word.
package engines
