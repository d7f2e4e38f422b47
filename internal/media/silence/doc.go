// Package silence detects and removes silent stretches from media files
// using ffmpeg's silencedetect filter and segment concatenation.
package silence
