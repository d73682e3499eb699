// Command doski-crawler is the classifieds crawler entrypoint.
package main

import "github.com/boardwatch/doski-crawler/cmd"

func main() {
	cmd.Execute()
}
