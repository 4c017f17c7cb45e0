// Command kvs-client issues a single SET, GET, or REMOVE request against a
// running kvs-server and prints the result (spec.md §6, grounded in
// original_source/src/bin/kvs-client.rs's set/get/rm subcommand shape,
// translated from clap to pflag-per-subcommand, matching
// cmd/kvs-server/main.go's flag-parsing and os.Exit(code) conventions).
package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/iamnilotpal/ignite-kv/internal/protocol"
	"github.com/iamnilotpal/ignite-kv/pkg/kvsclient"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "set":
		return runSet(rest)
	case "get":
		return runGet(rest)
	case "rm":
		return runRemove(rest)
	case "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client <set KEY VALUE | get KEY | rm KEY> [--addr ip:port]")
}

func runSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	addr := fs.String("addr", options.DefaultAddr, "server address (IP:PORT)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: kvs-client set KEY VALUE [--addr ip:port]")
		return 1
	}
	key, value := fs.Arg(0), fs.Arg(1)

	client, err := kvsclient.Connect(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	resp, err := client.Set(context.Background(), []byte(key), []byte(value))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch r := resp.(type) {
	case protocol.OKResponse:
		return 0
	case protocol.ErrorResponse:
		fmt.Fprintln(os.Stderr, r.Message)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "unexpected response %T\n", resp)
		return 1
	}
}

func runGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	addr := fs.String("addr", options.DefaultAddr, "server address (IP:PORT)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: kvs-client get KEY [--addr ip:port]")
		return 1
	}
	key := fs.Arg(0)

	client, err := kvsclient.Connect(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	resp, err := client.Get(context.Background(), []byte(key))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch r := resp.(type) {
	case protocol.ValueResponse:
		fmt.Println(string(r.Value))
		return 0
	case protocol.NotFoundResponse:
		fmt.Println("Key not found")
		return 0
	case protocol.ErrorResponse:
		fmt.Fprintln(os.Stderr, r.Message)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "unexpected response %T\n", resp)
		return 1
	}
}

func runRemove(args []string) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	addr := fs.String("addr", options.DefaultAddr, "server address (IP:PORT)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: kvs-client rm KEY [--addr ip:port]")
		return 1
	}
	key := fs.Arg(0)

	client, err := kvsclient.Connect(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	resp, err := client.Remove(context.Background(), []byte(key))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch r := resp.(type) {
	case protocol.OKResponse:
		return 0
	case protocol.NotFoundResponse:
		fmt.Fprintln(os.Stderr, "Key not found")
		return 1
	case protocol.ErrorResponse:
		fmt.Fprintln(os.Stderr, r.Message)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "unexpected response %T\n", resp)
		return 1
	}
}
