package main

import "github.com/jovezhong/claude-code-history-viewer/cmd"

func main() {
	cmd.Execute()
}
