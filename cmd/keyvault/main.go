// Package main 提供 keyvault 命令行入口
package main

import (
	"os"

	"github.com/dep2p/go-keyvault/cmd/keyvault/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
