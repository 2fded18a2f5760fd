// Package progress forwards host progress events into the run state.
package progress
