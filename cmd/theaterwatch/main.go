package main

import (
	"context"
	"theaterwatch/cmd/theaterwatch/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
