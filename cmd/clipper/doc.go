// Command clipper runs the video post-processing daemon and its client
// subcommands.
package main
