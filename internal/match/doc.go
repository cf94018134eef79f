// Package match provides the typed match-centre record and the transforms that
// reshape it into tables.
//
// A MatchRecord is decoded from the JSON embedded in a match-centre page. Known
// fields are typed; everything else is retained in Extra so a record can be
// saved and re-encoded without loss. Summaries projects records onto the match
// summary table and BuildEvents flattens the event stream into one EventRow per
// event, in source order.
package match
