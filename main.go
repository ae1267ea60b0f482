package main

import "github.com/hienao/openlist-strm/cmd"

func main() {
	cmd.Execute()
}
