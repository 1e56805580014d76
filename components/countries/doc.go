// Package countries serves the country catalog as JSON options for nationality
// inputs.
//
// The handler responds to GET and HEAD requests, loads the catalog on first
// use, and filters names with the query and limit parameters. Prefix matches
// rank ahead of substring matches; within each group the catalog order is
// kept. A catalog that cannot be loaded answers 503 so the caller can retry.
package countries
