package main

import "github.com/charmbracelet/datagrid/internal/cmd"

func main() {
	cmd.Execute()
}
