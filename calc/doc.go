// Package calc implements the cycle-accurate core of a Z80-based graphing
// calculator emulator: the CPU interpreter, memory bus, flash state
// machine, port I/O dispatch, LCD controllers, keypad matrix, link port,
// and the hardware timer scheduler that ties them together.
//
// A Calc is single-threaded internally: the run loop and the handful of
// host-facing operations documented on Calc (key press/release, link byte
// enqueue, state load/save, register inspection) all take the same mutex.
package calc
