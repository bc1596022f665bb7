package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lwmacct/251207-go-cct/internal/app"
)

func main() {
	if err := app.New().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
