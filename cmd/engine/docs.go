package main

//go:generate swag init -g cmd/engine/main.go -o docs

// @title           YesNo Cricket Engine API
// @version         0.1.0
// @description     Virtual-currency prediction markets on live cricket. Pricing, trading and settlement.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
