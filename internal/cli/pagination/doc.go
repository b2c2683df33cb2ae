// Package pagination holds the paging flags shared by the page and browse
// commands, the metadata printed alongside paged output, and client-side
// sorting of the records being displayed.
package pagination
