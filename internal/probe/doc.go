// Package probe talks to debug probes and the firmware images they run.
//
// Three pieces live here:
//
//   - USBLister enumerates attached probes by the USB serial number of the
//     serial devices they expose. The serial number is the key used to match
//     a probe against the configured targets.
//   - OpenOCD implements Debugger over the OpenOCD Tcl RPC port. A session
//     can start RTT and stream up-channel 0, reset the target and program an
//     ELF image.
//   - RTTAddress reads the address of the _SEGGER_RTT control block from a
//     firmware ELF file.
//
// Sessions are opened per use. An RTT source keeps its session for as long
// as it streams; reset and reflash open a short-lived one of their own.
package probe
