// Package archive packages a run directory into a zip file and hands it to
// the caller for delivery.
//
// Both the run directory and the zip file are temporary: Package removes
// the run directory on every exit path, and Deliver removes the zip once it
// has been copied out, whether or not the copy succeeded.
package archive
