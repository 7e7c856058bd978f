package main

import (
	"log"

	"ticket-storefront/cmd"
	_ "ticket-storefront/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
