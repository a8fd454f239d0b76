package main

import (
	"github.com/haguru/kakashi/config"
	"github.com/haguru/kakashi/internal/app"
)

func main() {

	// create and initialize the app
	app, err := app.NewApp(config.CONFIG_PATH)
	if err != nil {
		panic(err) // handle error appropriately in production code
	}

	// run the app: starts the server and handles the routes defined in the
	// app package.
	err = app.Run()
	if err != nil {
		panic(err)
	}
}
