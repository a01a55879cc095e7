package main

import "github.com/mvp-joe/project-fieldsheet/internal/cli"

func main() {
	cli.Execute()
}
