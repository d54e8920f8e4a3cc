// Command pocketwell runs the habit tracking API server.
package main

import (
	"context"

	"github.com/dalemusser/waffle/app"
	"github.com/pocketwell/pocketwell/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
