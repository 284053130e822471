// Connectly support chat API.
//
// @title                       Connectly Support API
// @version                     1.0
// @description                 Agent authentication and customer support chats.
// @BasePath                    /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
