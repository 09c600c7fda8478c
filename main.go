package main

import "github.com/KaramelBytes/choropleth-cli/cmd"

func main() {
	cmd.Execute()
}
