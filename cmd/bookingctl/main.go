// Command bookingctl lets operators exercise the SMS booking engine from a
// shell: parse a message, check availability, and manage the booking window.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
