// cmd/polyreact-assets/main.go
package main

import (
	"polyreact/internal/appshell"
	"polyreact/internal/assetsapp"
)

func main() {
	appshell.Main(assetsapp.RunContext)
}
