// Package domain models USGS earthquake events and a client asset portfolio,
// and implements the aggregation and risk classification engine over them.
//
// # Data Source
//
// Events come from the USGS FDSN event web service in CSV form, see
// https://earthquake.usgs.gov/fdsnws/event/1/. Each row carries an origin
// time, coordinates, an optional magnitude, and a free-text "place".
//
// # USGS Data Conventions
//
// Place format:
//
//	"<distance> <compass> of <town>, <region>"  →  e.g. "10 km NE of Pahala, Hawaii"
//	Offshore and remote events may omit the comma: "Fiji region".
//
// The location key is the last comma-separated segment, trimmed. It is
// case-sensitive and is usually a US state or a country. See [LocationKey].
//
// Magnitude:
//
//	Optional. Empty in the feed means the network has not published one yet.
//	Absent magnitudes count as 0.0 toward a location's mean.
//
// Location sources:
//
//	The "locationSource" column names the network that located the event.
//	"hi" and "hv" are Hawaiian networks and "us" is the generalised NEIC
//	solution; [DefaultExcludedSources] drops them before analysis.
//
// # Risk Tiers
//
// An asset is High risk when its location key is among both the top-N
// locations by event count and the top-N by mean magnitude, Medium when it is
// in exactly one of them, and Low otherwise. See [Classify].
package domain
