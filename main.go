package main

import "github.com/securegit/securegit/cmd/securegit"

func main() {
	securegit.Execute()
}
