// Package listview provides a virtual scrolling list for Bubble Tea programs.
//
// Only the rows inside the viewport, plus a small buffer, are rendered, so the
// cost of a frame does not depend on how many pages have been accumulated.
// Navigation covers up/down, j/k, pgup/pgdn and home/end.
package listview
