// Package voice implements the final pipeline stage. It renders the dialogue
// script to an MP3 in the audio directory, named after the job so the HTTP
// layer can serve it by ID. Synthesis goes through the tts client, which
// degrades to simulated output when no API key is configured.
package voice
