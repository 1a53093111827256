package main

import "basket-prices/cmd"

func main() {
	cmd.Execute()
}
