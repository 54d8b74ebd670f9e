// Command genhash prints a bcrypt hash for a password, for seeding users by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nretrorsum/work-test/internal/auth"
)

func main() {
	password := flag.String("password", "", "password to hash")
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash -password <password> [-cost 12]")
		os.Exit(2)
	}
	h, err := auth.HashPassword(*password, *cost)
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
