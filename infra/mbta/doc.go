// Package mbta fetches predictions from the MBTA v3 API
// (https://api-v3.mbta.com/predictions) and implements prediction.Source.
package mbta
