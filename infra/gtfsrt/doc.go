// Package gtfsrt implements prediction.Source on a GTFS-Realtime
// TripUpdates feed. It is an alternative to the MBTA v3 JSON API for
// deployments that only have the protobuf feed.
package gtfsrt
