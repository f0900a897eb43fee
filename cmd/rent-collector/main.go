// @title        Rent Collector API
// @version      1.0
// @description  Finds rent held by token accounts of many wallets and collects it into one address.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := execute(newRootCommand()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
