// Package steering implements reactive steering behaviours.
//
// Every behaviour is a pure function of the vehicle it steers and its explicit
// inputs. Each returns a steering force in world space, where the zero vector
// means no correction is needed. Behaviours never modify their arguments. They
// are safe to call concurrently as long as nothing mutates the vehicles being
// read.
package steering
