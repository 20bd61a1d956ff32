package main

import "github.com/eaglerock1337/tomeclicker-sub000/cmd/tome/root"

func main() {
	root.Execute()
}
