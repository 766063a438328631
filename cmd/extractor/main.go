package main

import "github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/cmd/extractor/cmd"

func main() {
	cmd.Execute()
}
