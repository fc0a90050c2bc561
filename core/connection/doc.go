// Package connection pairs train departures with connecting bus departures.
//
// For every train the matcher keeps the bus with the smallest wait after the
// transfer, then designates the pairing with the shortest total journey as
// optimal. Inputs are lead times in whole minutes sorted ascending.
package connection
