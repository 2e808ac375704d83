package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/planwright/planwright/internal/credential"
)

func cmdKeys(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: planwright keys <list|set|delete> [backend]")
		os.Exit(1)
	}

	v := credential.NewVault()

	switch args[0] {
	case "list":
		backends, err := v.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error listing keys: %v\n", err)
			os.Exit(1)
		}
		if len(backends) == 0 {
			fmt.Println("No API keys stored")
			return
		}
		for _, b := range backends {
			fmt.Printf("  %s: ****\n", b)
		}

	case "set":
		if len(args) < 2 {
			fmt.Println("Usage: planwright keys set <backend>")
			os.Exit(1)
		}
		backend := strings.ToLower(args[1])
		fmt.Printf("Enter API key for %s: ", backend)
		key, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading key: %v\n", err)
			os.Exit(1)
		}
		if err := v.Set(backend, string(key)); err != nil {
			fmt.Fprintf(os.Stderr, "error storing key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key for %s stored successfully\n", backend)

	case "delete":
		if len(args) < 2 {
			fmt.Println("Usage: planwright keys delete <backend>")
			os.Exit(1)
		}
		backend := strings.ToLower(args[1])
		if err := v.Delete(backend); err != nil {
			fmt.Fprintf(os.Stderr, "error deleting key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key for %s deleted\n", backend)

	default:
		fmt.Fprintf(os.Stderr, "unknown keys command: %s\n", args[0])
		os.Exit(1)
	}
}
