// Package session is the single-threaded actor that sits between an
// interactive collaborator and the core components.
//
// Every input lands on one ordered mailbox: collaborator commands, playback
// ticks sampled from a Player, asynchronous duration probe results and
// encode controller events. The Run loop handles them one at a time, so the
// trim state needs no locking and the last writer wins strictly in arrival
// order. Probe results are tagged with the audio selection they belong to;
// results for a superseded selection are dropped.
//
// Output is a stream of typed events on Events(). The channel is closed when
// Run returns.
package session
