// Command manage runs administrative tasks against the site database.
package main

import "github.com/obutuz/Miley/cmd/manage/commands"

func main() {
	commands.Execute()
}
