// Package server implements the WebSocket bridge for a running tour.
//
// The bridge lets tools outside the page follow a tour and drive it. It is
// registered with the tour engine as both a renderer and a listener, so every
// step change and every frame is broadcast to connected clients as JSON text
// frames. Clients send intents back, which are forwarded to the engine.
//
// # Wire Format
//
// Server to client:
//
//	{"type":"step_changed","index":1,"step":{...},"total":4}
//	{"type":"frame","frame":{...}}
//	{"type":"completed"}
//	{"type":"skipped"}
//	{"type":"cleared"}
//
// Client to server:
//
//	{"type":"intent","intent":"next"}
//
// Accepted intents are next, back, skip and close. Anything else is logged
// and ignored. A client that connects mid-tour first receives the latest
// step_changed and frame messages.
//
// # Slow Clients
//
// Each client has a bounded send queue. Broadcasts never block: a client
// whose queue is full is dropped and its connection closed.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8787}, engine)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine.AddRenderer(srv)
//	engine.Subscribe(srv)
//
//	// Start blocks until SIGINT, SIGTERM or ctx is done
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Watching a bridge from another process:
//
//	c, err := server.Dial(ctx, "127.0.0.1:8787")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//	for {
//	    msg, err := c.Read()
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(msg.Type)
//	}
//
// # Logging
//
// Connection events and dropped clients are logged at info level. Malformed
// client messages are logged at warn level.
package server
