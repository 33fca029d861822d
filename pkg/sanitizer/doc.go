// Package sanitizer cleans user and vendor supplied text before it reaches a
// speaker or a log line.
//
// [PlainText] removes all markup with a bluemonday strict policy.
// [SpeechText] additionally replaces spaces with commas for MiIO TTS actions.
// [Label] normalizes device aliases and names.
package sanitizer
