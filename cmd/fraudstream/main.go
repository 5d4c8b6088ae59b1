// Command fraudstream generates synthetic bank transactions, scores them for
// fraud and serves them to the live map.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
