package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/urcet/yourfest-api/cmd/app"
)

// @title          yoUR Fest API
// @version        1.0
// @description    Event catalog, registration and ticket verification for yoUR Fest.
//
// @contact.name   yoUR Fest tech team
// @contact.email  tech@yourfest.example.edu
//
// @BasePath  /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
