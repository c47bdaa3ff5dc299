package main

import "net/http"

func main() {
	app := mustBootstrapTrackMintAPI()
	defer app.Close()

	if err := app.Run(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}
}
