// Package prediction turns raw feed predictions into sorted lead times. The
// Source interface abstracts the remote feed so monitors never open a socket
// themselves.
package prediction
