package main

import "github.com/atlaslearn/atlas/backend/cmd"

func main() {
	cmd.Execute()
}
