/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/tgwatch/tgwatch/cmd"
)

//go:generate swag init --parseDependency --propertyStrategy pascalcase

// @title           tgwatch API
// @version         1.0

// @securitydefinitions.apikey ApiKeyAuth
// @in							header
// @name						Authorization
func main() {
	cmd.Execute()
}
