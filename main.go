package main

import "site-cleaner/cmd"

func main() {
	cmd.Execute()
}
