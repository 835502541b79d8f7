package main

import (
	"os"
)

// @title                       Placement Management API
// @version                     1.0
// @description                 Account, credential and resume endpoints of the placement management backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
