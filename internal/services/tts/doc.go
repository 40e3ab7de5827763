// Package tts wraps the ElevenLabs text-to-speech API. Every synthesis
// produces two files: the MP3 audio and a sibling metadata JSON document whose
// path is derived by replacing the ".mp3" suffix with "_metadata.json".
//
// When no API key is configured, or the upstream request fails, the client
// falls back to simulated synthesis: it still writes both files (the audio is
// a minimal MP3 header) and marks the metadata with simulated=true, so the
// rest of the pipeline behaves identically either way.
package tts
