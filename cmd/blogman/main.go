// Command blogman はブログAPIサーバーを起動する。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/blogman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "blogman: %v\n", err)
		os.Exit(1)
	}
}
