// Package jobspec defines the immutable render request handed from the
// editing session to the command builder and encode controller, together
// with submission validation and the accepted file format hints.
package jobspec
