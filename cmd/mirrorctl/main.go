// mirrorctl is a small remote control for a running mirror pipeline.
//
// Usage:
//
//	mirrorctl [-addr host:port] status     print one status snapshot
//	mirrorctl [-addr host:port] calibrate  zero hip sway at the current pose
//	mirrorctl [-addr host:port] stop       shut the pipeline down
//	mirrorctl [-addr host:port] watch      stream status until interrupted
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/reachy-mirror/internal/httpc"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Mirror dashboard address")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mirrorctl [-addr host:port] status|calibrate|stop|watch")
		os.Exit(2)
	}

	var err error
	switch flag.Arg(0) {
	case "status":
		err = getJSON(*addr, "/api/status")
	case "calibrate":
		err = post(*addr, "/api/calibrate")
	case "stop":
		err = post(*addr, "/api/stop")
	case "watch":
		err = watch(*addr)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "mirrorctl: %v\n", err)
		os.Exit(1)
	}
}

func getJSON(addr, path string) error {
	resp, err := httpc.Client.Get("http://" + addr + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp.Body)
}

func post(addr, path string) error {
	resp, err := httpc.Client.Post("http://"+addr+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, body)
	}
	return printBody(resp.Body)
}

// printBody re-indents a JSON response for the terminal.
func printBody(r io.Reader) error {
	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// watch streams status snapshots over the websocket until Ctrl+C.
func watch(addr string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial("ws://"+addr+"/ws/status", nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil // closed by us or by the server
		}
		fmt.Println(string(msg))
	}
}
