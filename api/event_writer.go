package api

// wireBroadcastOutput hooks a CompileService's output callback to the
// server's Broadcaster, so every byte the compiled program writes to
// stdout is pushed to subscribed WebSocket clients as an output event.
// A plain callback rather than an io.Writer wrapper, since
// service.CompileService already owns its output buffering
// (service/compile_service.go's broadcastWriter).
func wireBroadcastOutput(broadcaster *Broadcaster, sessionID string) func(string) {
	return func(text string) {
		if broadcaster != nil {
			broadcaster.BroadcastOutput(sessionID, "stdout", text)
		}
	}
}
