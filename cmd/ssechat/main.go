// Command ssechat is a terminal chat client for SSE streaming endpoints.
package main

import "github.com/diogo/ssechat/internal/commands"

func main() {
	commands.Execute()
}
