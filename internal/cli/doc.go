// Package cli implements the command-line interface for matchcentre.
//
// The cli package provides the Cobra-based CLI with commands to extract a match from its
// match-centre page (scrape), rebuild the tables from a saved record (events) and list
// every saved match (summary). It coordinates the scraper, match, filter and storage
// packages and formats the result as text or JSON.
package cli
