// Package election models the results of parliamentary elections.
//
// An Election holds per-riding, per-party vote tallies for a single date and
// answers riding winners, popular vote and seat counts. A Jurisdiction keeps
// one Election per date and derives trends across them: the dates a party
// won, its share of the popular vote over time and how the set of ridings
// changed between consecutive elections.
//
// Winner lists are tie-inclusive and follow first-seen order, so tallies are
// kept in insertion-ordered maps rather than plain Go maps.
//
// Neither type is safe for concurrent use; callers serialize access.
package election
