// Package audio handles encoding, decoding, and streaming of Opus audio
// for Discord voice playback, plus PCM helpers for the listening pipeline.
//
// Synthesized or uploaded audio is transcoded to Opus via FFmpeg and carried
// as concatenated length-prefixed frames ([uint16 LE length][opus bytes]).
// No headers, no metadata. Stream sends decoded frames to a Discord voice
// connection. PCM helpers decode arbitrary audio to 48kHz stereo s16le and
// measure loudness for the silence gate.
package audio
