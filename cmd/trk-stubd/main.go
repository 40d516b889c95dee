// trk-stubd serves an in-memory stand-in for the time-tracking backend on
// localhost, for developing the client without the production API.
// Credentials: account "acme", username "jdoe", password "secret".
package main

import (
	"fmt"
	"log"
	"os"

	"trk-cli/internal/stub"
)

func main() {
	addr := os.Getenv("TRK_STUB_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	fmt.Printf("trk-stubd listening on %s\n", addr)
	if err := stub.NewServer().Run(addr); err != nil {
		log.Fatal(err)
	}
}
