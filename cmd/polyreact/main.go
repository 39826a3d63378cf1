// cmd/polyreact/main.go
package main

import (
	"polyreact/internal/app"
	"polyreact/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
