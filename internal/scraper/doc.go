// Package scraper loads football match-centre pages and extracts the match
// data embedded in them.
//
// A match-centre page carries its data as a JavaScript object literal inside
// the first script block of #layout-wrapper. The literal is located from its
// matchId key, split into top-level entries with a bracket- and quote-aware
// scanner, and merged into one JSON object seeded from matchCentreData. The
// breadcrumb navigation supplies region, league, season and competition
// stage.
//
// Pages are loaded through a Session. HTTPSession issues plain GET requests;
// PlaywrightSession drives headless Chromium for pages that render the data
// client-side. Sessions are acquired with WithSession, which releases them on
// every exit path. Cached wraps any Opener with an on-disk PageCache so that
// a page fetched within the TTL is served without opening a session.
package scraper
