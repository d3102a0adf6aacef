// Package config loads the target definitions and process settings uberlog
// runs with.
//
// # Targets
//
// Targets describe the boards uberlog knows how to talk to. Each one is keyed
// by the serial number of the debug probe wired to it; when a probe with that
// serial number shows up, a log source is created for the target. Probes
// without an entry are ignored.
//
// The file is YAML and defaults to ~/.config/uberlog/targets.yaml. A missing
// file is not an error, it just means no hardware sources:
//
//	targets:
//	  - name: sensor-board
//	    processor: STM32F411RETx
//	    probe_id: "0669FF505055877267"
//	    log_backend:
//	      uart: { dev: /dev/ttyACM0, baud: 115200 }
//	  - name: radio
//	    processor: nRF52840_xxAA
//	    probe_id: "000683456789"
//	    openocd: 127.0.0.1:6666
//	    rtt_port: 9090
//	    log_backend:
//	      rtt: { elf_path: ~/fw/radio.elf }
//
// # Defaults
//
//   - baud: 115200
//   - openocd: 127.0.0.1:6666 (Tcl RPC port of the OpenOCD serving the probe)
//   - rtt_port: 9090 (port OpenOCD exposes RTT channel 0 on)
//   - name: the probe_id
//
// Exactly one of uart or rtt must be set. elf_path outside the backend is
// optional and only used to reflash UART targets.
//
// # Environment
//
// LoadEnv reads process settings from the environment after loading a .env
// file from the working directory:
//
//   - UBERLOG_LOG_FILE: process log destination (default uberlog.log)
//   - UBERLOG_LOG_LEVEL: trace, debug, info, warn or error (default info)
//   - UBERLOG_REFRESH_INTERVAL: probe re-scan interval used when device
//     hot-plug events are unavailable (default 2s)
package config
