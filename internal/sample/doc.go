// Package sample holds the refresh-cycle machinery shared by every data
// source: a logical clock that the driving loop advances once per cycle,
// per-source refresh windows, a lazy cache keeping the two most recent raw
// samples, and the saturating diff and per-second normalization helpers used
// to turn cumulative kernel counters into rates.
//
// Everything here is single-threaded. The clock is owned by the backend and
// passed by pointer to each cache; nothing is shared across goroutines.
package sample
