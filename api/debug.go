package api

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var apiLog *log.Logger

func init() {
	if os.Getenv("IMPC_DEBUG") != "" {
		logPath := filepath.Join(os.TempDir(), "impc-api-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			apiLog = log.New(os.Stderr, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			apiLog = log.New(f, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		apiLog = log.New(io.Discard, "", 0)
	}
}

// debugLog logs a message if IMPC_DEBUG is set.
func debugLog(format string, args ...interface{}) {
	apiLog.Printf(format, args...)
}
