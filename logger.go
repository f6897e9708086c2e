package main

import (
	"log"
	"os"
)

// For log management, use journalctl commands:
//   - View logs: journalctl -u miniapp-relay
//   - Follow logs: journalctl -u miniapp-relay -f
//   - View errors: journalctl -u miniapp-relay -p err

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
)

// initLoggers sets up separate loggers for stdout and stderr.
func initLoggers() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}
