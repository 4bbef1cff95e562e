package main

import "github.com/secscan/secscan/cmd/secscan"

func main() { secscan.Execute() }
