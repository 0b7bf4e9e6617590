package main

import "github.com/iCaptainNemo/local-voice/cmd"

func main() {
	cmd.Execute()
}
